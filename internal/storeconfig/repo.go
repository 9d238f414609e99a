package storeconfig

import (
	"context"
	"strings"

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

func (r *repository) CreateStore(ctx context.Context, store *models.Store) (*models.Store, error) {
	if err := r.DB(ctx).Create(store).Error; err != nil {
		return nil, err
	}
	return store, nil
}

func (r *repository) FindStore(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.DB(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *repository) FindStoreBySlug(ctx context.Context, slug string) (*models.Store, error) {
	var store models.Store
	if err := r.DB(ctx).First(&store, "slug = ?", strings.ToLower(slug)).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *repository) CreateConfig(ctx context.Context, cfg *models.StoreProductConfig) (*models.StoreProductConfig, error) {
	if err := r.DB(ctx).Create(cfg).Error; err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *repository) FindConfig(ctx context.Context, storeID uuid.UUID, sku string) (*models.StoreProductConfig, error) {
	var cfg models.StoreProductConfig
	if err := r.DB(ctx).
		First(&cfg, "store_id = ? AND product_sku = ?", storeID, sku).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ListConfigs pages a store's overlays newest first with a keyset cursor.
func (r *repository) ListConfigs(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.StoreProductConfig, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	tx := r.DB(ctx).
		Model(&models.StoreProductConfig{}).
		Where("store_id = ?", storeID)
	if cursor != nil {
		tx = tx.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.StoreProductConfig
	if err := tx.Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}

	page := pagination.BuildPage(rows, params.Limit, func(c models.StoreProductConfig) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	})
	return page.Items, page.NextCursor, nil
}

// UpdateConfig saves the overlay only when the caller holds the current
// updated_at. Zero rows affected means the row moved underneath the caller.
func (r *repository) UpdateConfig(ctx context.Context, cfg *models.StoreProductConfig) (*models.StoreProductConfig, error) {
	res := r.DB(ctx).
		Model(&models.StoreProductConfig{}).
		Where("id = ? AND updated_at = ?", cfg.ID, cfg.UpdatedAt).
		Updates(map[string]any{
			"is_active":         cfg.IsActive,
			"is_featured":       cfg.IsFeatured,
			"custom_price":      cfg.CustomPrice,
			"custom_profit_pct": cfg.CustomProfitPct,
			"stock_quantity":    cfg.StockQuantity,
			"display_order":     cfg.DisplayOrder,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var fresh models.StoreProductConfig
	if err := r.DB(ctx).First(&fresh, "id = ?", cfg.ID).Error; err != nil {
		return nil, err
	}
	return &fresh, nil
}

func (r *repository) DeleteConfig(ctx context.Context, storeID uuid.UUID, sku string) error {
	res := r.DB(ctx).
		Where("store_id = ? AND product_sku = ?", storeID, sku).
		Delete(&models.StoreProductConfig{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
