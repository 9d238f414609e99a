package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	"github.com/dmendezdev/partsmarket-backend/pkg/outbox"
)

// Repository defines persistence for orders, their frozen lines, and the
// stock decrement that accompanies checkout.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateLineItems(ctx context.Context, items []models.OrderLineItem) error
	FindOrder(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error)
	FindOrderByNumber(ctx context.Context, storeID uuid.UUID, number string) (*models.Order, error)
	List(ctx context.Context, storeID uuid.UUID, query ListQuery) ([]models.Order, string, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	DecrementStock(ctx context.Context, storeID uuid.UUID, sku string, quantity int) error
}

// txRunner runs a function inside one database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// outboxEmitter appends a domain event inside the caller's transaction.
type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// sequencer hands out daily order-number sequence values.
type sequencer interface {
	NextInSequence(ctx context.Context, name string, ttl time.Duration) (int64, error)
}
