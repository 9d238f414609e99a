package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
)

// Quote is a non-committal price quotation for a prospective B2B client.
type Quote struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID        uuid.UUID         `gorm:"column:store_id;type:uuid;not null;uniqueIndex:ux_quotes_store_number"`
	QuoteNumber    string            `gorm:"column:quote_number;not null;uniqueIndex:ux_quotes_store_number"`
	ClientName     string            `gorm:"column:client_name;not null"`
	ClientEmail    string            `gorm:"column:client_email;not null"`
	ClientPhone    *string           `gorm:"column:client_phone"`
	CompanyName    *string           `gorm:"column:company_name"`
	CompanyTaxID   *string           `gorm:"column:company_tax_id"`
	Status         enums.QuoteStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	Subtotal       decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TaxAmount      decimal.Decimal   `gorm:"column:tax_amount;type:numeric(12,2);not null"`
	// DiscountAmount is the sum of the line item discounts, unlike the
	// order-level field of the same name on orders.
	DiscountAmount decimal.Decimal   `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	TotalAmount    decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Currency       enums.Currency    `gorm:"column:currency;type:text;not null;default:'MXN'"`
	QuoteDate      time.Time         `gorm:"column:quote_date;not null"`
	ExpirationDate time.Time         `gorm:"column:expiration_date;not null"`
	SentAt         *time.Time        `gorm:"column:sent_at"`
	DecidedAt      *time.Time        `gorm:"column:decided_at"`
	Notes          *string           `gorm:"column:notes"`
	Items          []QuoteLineItem   `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
