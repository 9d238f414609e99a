package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
)

// Repository defines persistence operations for the catalog and the
// per-store storefront projection.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	FindBySKUs(ctx context.Context, skus []string) (map[string]models.Product, error)
	List(ctx context.Context, query ListQuery) ([]models.Product, string, error)
	ListStorefront(ctx context.Context, storeID uuid.UUID, query StorefrontQuery) ([]StorefrontRow, string, error)
	ListFeatured(ctx context.Context, storeID uuid.UUID, limit int) ([]StorefrontRow, error)
	FindStorefrontProduct(ctx context.Context, storeID uuid.UUID, sku string) (*StorefrontRow, error)
}
