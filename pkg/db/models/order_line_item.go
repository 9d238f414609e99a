package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineItem is a frozen copy of a cart line at checkout time.
type OrderLineItem struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID            uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductSKU         string          `gorm:"column:product_sku;not null"`
	ProductName        string          `gorm:"column:product_name;not null"`
	ProductDescription *string         `gorm:"column:product_description"`
	ProductBrand       string          `gorm:"column:product_brand;not null"`
	ProductImage       *string         `gorm:"column:product_image"`
	UnitPrice          decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity           int             `gorm:"column:quantity;not null"`
	DiscountPct        decimal.Decimal `gorm:"column:discount_pct;type:numeric(5,2);not null;default:0"`
	DiscountAmount     decimal.Decimal `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	TaxRate            decimal.Decimal `gorm:"column:tax_rate;type:numeric(5,2);not null"`
	TaxAmount          decimal.Decimal `gorm:"column:tax_amount;type:numeric(12,2);not null"`
	TotalPrice         decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`
	ItemNotes          *string         `gorm:"column:item_notes"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
