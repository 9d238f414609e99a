package storeconfig

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
)

// StoreDTO is the public shape of one tenant.
type StoreDTO struct {
	ID           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	Slug         string         `json:"slug"`
	ContactEmail string         `json:"contact_email"`
	Phone        *string        `json:"phone,omitempty"`
	Currency     enums.Currency `json:"currency"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
}

// NewStoreDTO maps a store row into its public shape.
func NewStoreDTO(store *models.Store) *StoreDTO {
	return &StoreDTO{
		ID:           store.ID,
		Name:         store.Name,
		Slug:         store.Slug,
		ContactEmail: store.ContactEmail,
		Phone:        store.Phone,
		Currency:     store.Currency,
		IsActive:     store.IsActive,
		CreatedAt:    store.CreatedAt,
	}
}

// ConfigDTO is the public shape of one product overlay. UpdatedAt doubles as
// the concurrency token on update requests.
type ConfigDTO struct {
	ID              uuid.UUID        `json:"id"`
	StoreID         uuid.UUID        `json:"store_id"`
	ProductSKU      string           `json:"product_sku"`
	IsActive        bool             `json:"is_active"`
	IsFeatured      bool             `json:"is_featured"`
	CustomPrice     *decimal.Decimal `json:"custom_price,omitempty"`
	CustomProfitPct *decimal.Decimal `json:"custom_profit_pct,omitempty"`
	StockQuantity   int              `json:"stock_quantity"`
	DisplayOrder    int              `json:"display_order"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewConfigDTO maps an overlay row into its public shape.
func NewConfigDTO(cfg *models.StoreProductConfig) *ConfigDTO {
	return &ConfigDTO{
		ID:              cfg.ID,
		StoreID:         cfg.StoreID,
		ProductSKU:      cfg.ProductSKU,
		IsActive:        cfg.IsActive,
		IsFeatured:      cfg.IsFeatured,
		CustomPrice:     cfg.CustomPrice,
		CustomProfitPct: cfg.CustomProfitPct,
		StockQuantity:   cfg.StockQuantity,
		DisplayOrder:    cfg.DisplayOrder,
		CreatedAt:       cfg.CreatedAt,
		UpdatedAt:       cfg.UpdatedAt,
	}
}

// ConfigListResult is one page of a store's overlays.
type ConfigListResult struct {
	Configs    []ConfigDTO `json:"configs"`
	NextCursor string      `json:"next_cursor,omitempty"`
}
