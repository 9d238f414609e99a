package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a row of the shared parts catalog. The storefront treats
// the catalog as read-only; per-store pricing lives in StoreProductConfig.
type Product struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU           string           `gorm:"column:sku;not null;uniqueIndex:ux_products_sku"`
	Name          string           `gorm:"column:name;not null"`
	Description   *string          `gorm:"column:description"`
	Brand         string           `gorm:"column:brand;not null"`
	Category      string           `gorm:"column:category;not null"`
	ImageURL      *string          `gorm:"column:image_url"`
	BasePrice     decimal.Decimal  `gorm:"column:base_price;type:numeric(12,2);not null"`
	BaseProfitPct *decimal.Decimal `gorm:"column:base_profit_pct;type:numeric(5,2)"`
	IsActive      bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
