package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StoreProductConfig is the per-store overlay on a shared catalog product:
// visibility flags, stock, and the custom price/profit pair that drives
// effective price resolution.
type StoreProductConfig struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID         uuid.UUID        `gorm:"column:store_id;type:uuid;not null;uniqueIndex:ux_store_configs_store_sku"`
	ProductSKU      string           `gorm:"column:product_sku;not null;uniqueIndex:ux_store_configs_store_sku"`
	IsActive        bool             `gorm:"column:is_active;not null;default:true"`
	IsFeatured      bool             `gorm:"column:is_featured;not null;default:false"`
	CustomPrice     *decimal.Decimal `gorm:"column:custom_price;type:numeric(12,2)"`
	CustomProfitPct *decimal.Decimal `gorm:"column:custom_profit_pct;type:numeric(5,2)"`
	StockQuantity   int              `gorm:"column:stock_quantity;not null;default:0"`
	DisplayOrder    int              `gorm:"column:display_order;not null;default:0"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
