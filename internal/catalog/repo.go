package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmendezdev/partsmarket-backend/internal/repo"
	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	"github.com/dmendezdev/partsmarket-backend/pkg/pagination"
)

// ListQuery captures catalog browse filters.
type ListQuery struct {
	Pagination pagination.Params
	Category   string
	Brand      string
	Search     string
	ActiveOnly bool
}

// StorefrontQuery captures the storefront listing filters for one store.
type StorefrontQuery struct {
	Pagination pagination.Params
	Category   string
	Brand      string
	Search     string
}

// StorefrontRow is one joined catalog+config row for a store.
type StorefrontRow struct {
	Product models.Product
	Config  models.StoreProductConfig
}

type repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(tx)}
}

// CreateProduct inserts a catalog row.
func (r *repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct saves all fields of an existing catalog row.
func (r *repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindByID loads a product by primary key.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySKU loads a product by its unique SKU.
func (r *repository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySKUs loads the catalog rows for the given SKUs, keyed by SKU.
func (r *repository) FindBySKUs(ctx context.Context, skus []string) (map[string]models.Product, error) {
	if len(skus) == 0 {
		return map[string]models.Product{}, nil
	}
	var rows []models.Product
	if err := r.DB(ctx).Where("sku IN ?", skus).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]models.Product, len(rows))
	for _, row := range rows {
		out[row.SKU] = row
	}
	return out, nil
}

// List returns one page of catalog rows ordered newest first.
func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Product, string, error) {
	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	tx := r.DB(ctx).Model(&models.Product{})
	if query.ActiveOnly {
		tx = tx.Where("is_active = ?", true)
	}
	if category := strings.TrimSpace(query.Category); category != "" {
		tx = tx.Where("category = ?", category)
	}
	if brand := strings.TrimSpace(query.Brand); brand != "" {
		tx = tx.Where("brand = ?", brand)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", pattern, pattern)
	}
	if cursor != nil {
		tx = tx.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
	if err := tx.Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(query.Pagination.Limit)).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}

	page := pagination.BuildPage(rows, query.Pagination.Limit, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	return page.Items, page.NextCursor, nil
}

// ListStorefront returns one page of active catalog products configured for
// the store, joined with their per-store overlay.
func (r *repository) ListStorefront(ctx context.Context, storeID uuid.UUID, query StorefrontQuery) ([]StorefrontRow, string, error) {
	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	tx := r.storefrontBase(ctx, storeID)
	if category := strings.TrimSpace(query.Category); category != "" {
		tx = tx.Where("products.category = ?", category)
	}
	if brand := strings.TrimSpace(query.Brand); brand != "" {
		tx = tx.Where("products.brand = ?", brand)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		tx = tx.Where("LOWER(products.name) LIKE ? OR LOWER(products.sku) LIKE ?", pattern, pattern)
	}
	if cursor != nil {
		tx = tx.Where("(store_product_configs.created_at, store_product_configs.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	limit := pagination.LimitWithBuffer(query.Pagination.Limit)
	rows, err := r.scanStorefront(tx.
		Order("store_product_configs.created_at DESC").
		Order("store_product_configs.id DESC").
		Limit(limit))
	if err != nil {
		return nil, "", err
	}

	page := pagination.BuildPage(rows, query.Pagination.Limit, func(row StorefrontRow) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.Config.CreatedAt, ID: row.Config.ID}
	})
	return page.Items, page.NextCursor, nil
}

// ListFeatured returns the store's featured products ordered for display.
func (r *repository) ListFeatured(ctx context.Context, storeID uuid.UUID, limit int) ([]StorefrontRow, error) {
	if limit <= 0 {
		limit = 12
	}
	return r.scanStorefront(r.storefrontBase(ctx, storeID).
		Where("store_product_configs.is_featured = ?", true).
		Order("store_product_configs.display_order ASC").
		Order("store_product_configs.created_at DESC").
		Limit(limit))
}

// FindStorefrontProduct loads one joined row by store and SKU.
func (r *repository) FindStorefrontProduct(ctx context.Context, storeID uuid.UUID, sku string) (*StorefrontRow, error) {
	rows, err := r.scanStorefront(r.storefrontBase(ctx, storeID).
		Where("products.sku = ?", sku).
		Limit(1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *repository) storefrontBase(ctx context.Context, storeID uuid.UUID) *gorm.DB {
	return r.DB(ctx).
		Table("store_product_configs").
		Joins("JOIN products ON products.sku = store_product_configs.product_sku").
		Where("store_product_configs.store_id = ?", storeID).
		Where("store_product_configs.is_active = ?", true).
		Where("products.is_active = ?", true)
}

// scanStorefront materializes config rows from the joined query, then loads
// their catalog products in one batch. Configs whose product vanished
// mid-query are skipped rather than surfaced half-empty.
func (r *repository) scanStorefront(tx *gorm.DB) ([]StorefrontRow, error) {
	var configs []models.StoreProductConfig
	if err := tx.Select("store_product_configs.*").Find(&configs).Error; err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return []StorefrontRow{}, nil
	}

	skus := make([]string, 0, len(configs))
	for _, cfg := range configs {
		skus = append(skus, cfg.ProductSKU)
	}
	products, err := r.FindBySKUs(tx.Statement.Context, skus)
	if err != nil {
		return nil, err
	}

	rows := make([]StorefrontRow, 0, len(configs))
	for _, cfg := range configs {
		product, ok := products[cfg.ProductSKU]
		if !ok {
			continue
		}
		rows = append(rows, StorefrontRow{Product: product, Config: cfg})
	}
	return rows, nil
}
