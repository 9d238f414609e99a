package storeconfig

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	"github.com/dmendezdev/partsmarket-backend/pkg/pagination"
)

// Repository defines persistence for store tenants and their product
// configuration overlays.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateStore(ctx context.Context, store *models.Store) (*models.Store, error)
	FindStore(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindStoreBySlug(ctx context.Context, slug string) (*models.Store, error)

	CreateConfig(ctx context.Context, cfg *models.StoreProductConfig) (*models.StoreProductConfig, error)
	FindConfig(ctx context.Context, storeID uuid.UUID, sku string) (*models.StoreProductConfig, error)
	ListConfigs(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.StoreProductConfig, string, error)
	UpdateConfig(ctx context.Context, cfg *models.StoreProductConfig) (*models.StoreProductConfig, error)
	DeleteConfig(ctx context.Context, storeID uuid.UUID, sku string) error
}

// productFinder is the slice of the catalog repository this package needs to
// verify a SKU exists before configuring it.
type productFinder interface {
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
}
