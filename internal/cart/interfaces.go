package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmendezdev/partsmarket-backend/internal/catalog"
	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
)

// Repository defines persistence for carts and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateCart(ctx context.Context, cart *models.CartRecord) (*models.CartRecord, error)
	FindCart(ctx context.Context, cartID uuid.UUID) (*models.CartRecord, error)
	FindActiveCart(ctx context.Context, storeID uuid.UUID, sessionID string) (*models.CartRecord, error)
	UpdateCart(ctx context.Context, cart *models.CartRecord) error
	UpdateCartStatus(ctx context.Context, cartID uuid.UUID, status enums.CartStatus) error
	CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	UpdateItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, cartID uuid.UUID, sku string) error
	DeleteItems(ctx context.Context, cartID uuid.UUID) error
	MarkAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// storefrontFinder is the slice of the catalog repository the cart needs to
// snapshot a product at add time.
type storefrontFinder interface {
	FindStorefrontProduct(ctx context.Context, storeID uuid.UUID, sku string) (*catalog.StorefrontRow, error)
}
