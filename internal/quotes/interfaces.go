package quotes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmendezdev/partsmarket-backend/internal/catalog"
	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
	"github.com/dmendezdev/partsmarket-backend/pkg/outbox"
)

// Repository defines persistence for quotes and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateQuote(ctx context.Context, quote *models.Quote) (*models.Quote, error)
	CreateLineItems(ctx context.Context, items []models.QuoteLineItem) error
	FindQuote(ctx context.Context, storeID, quoteID uuid.UUID) (*models.Quote, error)
	FindQuoteByNumber(ctx context.Context, storeID uuid.UUID, number string) (*models.Quote, error)
	List(ctx context.Context, storeID uuid.UUID, query ListQuery) ([]models.Quote, string, error)
	// UpdateQuoteIfStatus applies updates only while the row still holds the
	// expected status, so concurrent transitions lose cleanly.
	UpdateQuoteIfStatus(ctx context.Context, quoteID uuid.UUID, from enums.QuoteStatus, updates map[string]any) error
	ListExpirable(ctx context.Context, asOf time.Time, limit int) ([]models.Quote, error)
}

// storefrontFinder is the slice of the catalog repository quotes need to
// price a line at build time.
type storefrontFinder interface {
	FindStorefrontProduct(ctx context.Context, storeID uuid.UUID, sku string) (*catalog.StorefrontRow, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type sequencer interface {
	NextInSequence(ctx context.Context, name string, ttl time.Duration) (int64, error)
}
