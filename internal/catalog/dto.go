package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
)

// ProductDTO is the catalog payload returned to back-office clients.
type ProductDTO struct {
	ID            uuid.UUID        `json:"id"`
	SKU           string           `json:"sku"`
	Name          string           `json:"name"`
	Description   *string          `json:"description,omitempty"`
	Brand         string           `json:"brand"`
	Category      string           `json:"category"`
	ImageURL      *string          `json:"image_url,omitempty"`
	BasePrice     decimal.Decimal  `json:"base_price"`
	BaseProfitPct *decimal.Decimal `json:"base_profit_pct,omitempty"`
	IsActive      bool             `json:"is_active"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// NewProductDTO maps a catalog row into its API payload.
func NewProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		ID:            product.ID,
		SKU:           product.SKU,
		Name:          product.Name,
		Description:   product.Description,
		Brand:         product.Brand,
		Category:      product.Category,
		ImageURL:      product.ImageURL,
		BasePrice:     product.BasePrice,
		BaseProfitPct: product.BaseProfitPct,
		IsActive:      product.IsActive,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}

// ProductListResult is one catalog page plus the follow-up cursor.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// StorefrontProductDTO is a catalog product as one store sells it: the
// effective price already resolved, stock and display hints attached.
type StorefrontProductDTO struct {
	ProductSKU     string          `json:"sku"`
	Name           string          `json:"name"`
	Description    *string         `json:"description,omitempty"`
	Brand          string          `json:"brand"`
	Category       string          `json:"category"`
	ImageURL       *string         `json:"image_url,omitempty"`
	EffectivePrice decimal.Decimal `json:"price"`
	StockQuantity  int             `json:"stock_quantity"`
	IsFeatured     bool            `json:"is_featured"`
	DisplayOrder   int             `json:"display_order"`
}

// StorefrontListResult is one storefront page plus the follow-up cursor.
type StorefrontListResult struct {
	Products   []StorefrontProductDTO `json:"products"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}
