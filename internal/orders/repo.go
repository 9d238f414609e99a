package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmendezdev/partsmarket-backend/internal/repo"
	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
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

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.DB(ctx).Omit("Items").Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateLineItems(ctx context.Context, items []models.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&items).Error
}

func (r *repository) FindOrder(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		First(&order, "id = ? AND store_id = ?", orderID, storeID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrderByNumber(ctx context.Context, storeID uuid.UUID, number string) (*models.Order, error) {
	var order models.Order
	if err := r.DB(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		First(&order, "store_id = ? AND order_number = ?", storeID, number).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns one page of the store's orders newest first.
func (r *repository) List(ctx context.Context, storeID uuid.UUID, query ListQuery) ([]models.Order, string, error) {
	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	tx := r.DB(ctx).
		Model(&models.Order{}).
		Where("store_id = ?", storeID)
	if query.Status != nil {
		tx = tx.Where("status = ?", *query.Status)
	}
	if query.Channel != nil {
		tx = tx.Where("channel = ?", *query.Channel)
	}
	if cursor != nil {
		tx = tx.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	if err := tx.Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(query.Pagination.Limit)).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}

	page := pagination.BuildPage(rows, query.Pagination.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	return page.Items, page.NextCursor, nil
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	res := r.DB(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementStock atomically takes quantity units from the store's overlay.
// Zero rows affected means the stock was insufficient (or the config is
// gone), never a partial decrement.
func (r *repository) DecrementStock(ctx context.Context, storeID uuid.UUID, sku string, quantity int) error {
	res := r.DB(ctx).
		Model(&models.StoreProductConfig{}).
		Where("store_id = ? AND product_sku = ? AND stock_quantity >= ?", storeID, sku, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
