package quotes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmendezdev/partsmarket-backend/internal/repo"
	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
	"github.com/dmendezdev/partsmarket-backend/pkg/pagination"
)

type repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) CreateQuote(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if err := r.DB(ctx).Omit("Items").Create(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

func (r *repository) CreateLineItems(ctx context.Context, items []models.QuoteLineItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&items).Error
}

func (r *repository) FindQuote(ctx context.Context, storeID, quoteID uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	if err := r.DB(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		First(&quote, "id = ? AND store_id = ?", quoteID, storeID).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) FindQuoteByNumber(ctx context.Context, storeID uuid.UUID, number string) (*models.Quote, error) {
	var quote models.Quote
	if err := r.DB(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		First(&quote, "store_id = ? AND quote_number = ?", storeID, number).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

// List returns one page of the store's quotes newest first.
func (r *repository) List(ctx context.Context, storeID uuid.UUID, query ListQuery) ([]models.Quote, string, error) {
	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	tx := r.DB(ctx).
		Model(&models.Quote{}).
		Where("store_id = ?", storeID)
	if query.Status != nil {
		tx = tx.Where("status = ?", *query.Status)
	}
	if cursor != nil {
		tx = tx.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Quote
	if err := tx.Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(query.Pagination.Limit)).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}

	page := pagination.BuildPage(rows, query.Pagination.Limit, func(q models.Quote) pagination.Cursor {
		return pagination.Cursor{CreatedAt: q.CreatedAt, ID: q.ID}
	})
	return page.Items, page.NextCursor, nil
}

// UpdateQuoteIfStatus is the lifecycle write: zero rows affected means the
// quote is gone or another writer moved it first.
func (r *repository) UpdateQuoteIfStatus(ctx context.Context, quoteID uuid.UUID, from enums.QuoteStatus, updates map[string]any) error {
	res := r.DB(ctx).
		Model(&models.Quote{}).
		Where("id = ? AND status = ?", quoteID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListExpirable returns sent quotes whose expiration date has passed, oldest
// expirations first so a bounded sweep drains the backlog in order.
func (r *repository) ListExpirable(ctx context.Context, asOf time.Time, limit int) ([]models.Quote, error) {
	var rows []models.Quote
	err := r.DB(ctx).
		Where("status = ? AND expiration_date < ?", enums.QuoteStatusSent, asOf).
		Order("expiration_date ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
