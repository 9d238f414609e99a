package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmendezdev/partsmarket-backend/internal/repo"
	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
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

func (r *repository) CreateCart(ctx context.Context, cart *models.CartRecord) (*models.CartRecord, error) {
	if err := r.DB(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *repository) FindCart(ctx context.Context, cartID uuid.UUID) (*models.CartRecord, error) {
	var cart models.CartRecord
	if err := r.DB(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		First(&cart, "id = ?", cartID).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) FindActiveCart(ctx context.Context, storeID uuid.UUID, sessionID string) (*models.CartRecord, error) {
	var cart models.CartRecord
	if err := r.DB(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		First(&cart, "store_id = ? AND session_id = ? AND status = ?",
			storeID, sessionID, enums.CartStatusActive).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateCart saves the cart's own columns; items are managed separately.
func (r *repository) UpdateCart(ctx context.Context, cart *models.CartRecord) error {
	return r.DB(ctx).
		Omit("Items").
		Save(cart).Error
}

func (r *repository) UpdateCartStatus(ctx context.Context, cartID uuid.UUID, status enums.CartStatus) error {
	res := r.DB(ctx).
		Model(&models.CartRecord{}).
		Where("id = ?", cartID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if err := r.DB(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) UpdateItem(ctx context.Context, item *models.CartItem) error {
	return r.DB(ctx).Save(item).Error
}

func (r *repository) DeleteItem(ctx context.Context, cartID uuid.UUID, sku string) error {
	res := r.DB(ctx).
		Where("cart_id = ? AND product_sku = ?", cartID, sku).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	return r.DB(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}

// MarkAbandonedBefore flags active carts untouched since the cutoff as
// abandoned and reports how many rows it moved.
func (r *repository) MarkAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB(ctx).
		Model(&models.CartRecord{}).
		Where("status = ? AND updated_at < ?", enums.CartStatusActive, cutoff).
		Update("status", enums.CartStatusAbandoned)
	return res.RowsAffected, res.Error
}
