package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
	"github.com/dmendezdev/partsmarket-backend/pkg/types"
)

// Order is the immutable record produced at checkout. Line items are frozen
// copies of the cart; after creation only status transitions mutate the row.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID         uuid.UUID           `gorm:"column:store_id;type:uuid;not null;uniqueIndex:ux_orders_store_number"`
	OrderNumber     string              `gorm:"column:order_number;not null;uniqueIndex:ux_orders_store_number"`
	Channel         enums.OrderChannel  `gorm:"column:channel;type:text;not null;default:'b2c'"`
	CustomerName    string              `gorm:"column:customer_name;not null"`
	CustomerEmail   string              `gorm:"column:customer_email;not null"`
	CustomerPhone   *string             `gorm:"column:customer_phone"`
	DeliveryAddress types.Address       `gorm:"column:delivery_address;type:jsonb;serializer:json;not null"`
	Notes           *string             `gorm:"column:notes"`
	PONumber        *string             `gorm:"column:po_number"`
	PaymentTerms    *string             `gorm:"column:payment_terms"`
	Subtotal        decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TaxAmount       decimal.Decimal     `gorm:"column:tax_amount;type:numeric(12,2);not null"`
	// DiscountAmount is an order-level discount. Line discounts stay on the
	// line items and are already reflected in their totals, so they never
	// roll up into this field.
	DiscountAmount  decimal.Decimal     `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	ShippingCost    decimal.Decimal     `gorm:"column:shipping_cost;type:numeric(12,2);not null;default:0"`
	TotalAmount     decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Currency        enums.Currency      `gorm:"column:currency;type:text;not null;default:'MXN'"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	Priority        enums.Priority      `gorm:"column:priority;not null;default:2"`
	ConfirmedAt     *time.Time          `gorm:"column:confirmed_at"`
	ShippedAt       *time.Time          `gorm:"column:shipped_at"`
	DeliveredAt     *time.Time          `gorm:"column:delivered_at"`
	CancelledAt     *time.Time          `gorm:"column:cancelled_at"`
	PaidAt          *time.Time          `gorm:"column:paid_at"`
	RefundedAt      *time.Time          `gorm:"column:refunded_at"`
	Items           []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
