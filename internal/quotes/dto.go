package quotes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
	"github.com/dmendezdev/partsmarket-backend/pkg/pagination"
)

// ListQuery captures quote listing filters for one store.
type ListQuery struct {
	Pagination pagination.Params
	Status     *enums.QuoteStatus
}

// QuoteLineDTO is one quoted product line.
type QuoteLineDTO struct {
	ID             uuid.UUID       `json:"id"`
	ProductSKU     string          `json:"product_sku"`
	ProductName    string          `json:"product_name"`
	ProductBrand   string          `json:"product_brand"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	ItemNotes      *string         `json:"item_notes,omitempty"`
}

// QuoteDTO is the public shape of one quotation.
type QuoteDTO struct {
	ID             uuid.UUID         `json:"id"`
	StoreID        uuid.UUID         `json:"store_id"`
	QuoteNumber    string            `json:"quote_number"`
	ClientName     string            `json:"client_name"`
	ClientEmail    string            `json:"client_email"`
	ClientPhone    *string           `json:"client_phone,omitempty"`
	CompanyName    *string           `json:"company_name,omitempty"`
	CompanyTaxID   *string           `json:"company_tax_id,omitempty"`
	Status         enums.QuoteStatus `json:"status"`
	Subtotal       decimal.Decimal   `json:"subtotal"`
	TaxAmount      decimal.Decimal   `json:"tax_amount"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	TotalAmount    decimal.Decimal   `json:"total_amount"`
	Currency       enums.Currency    `json:"currency"`
	QuoteDate      time.Time         `json:"quote_date"`
	ExpirationDate time.Time         `json:"expiration_date"`
	SentAt         *time.Time        `json:"sent_at,omitempty"`
	DecidedAt      *time.Time        `json:"decided_at,omitempty"`
	Notes          *string           `json:"notes,omitempty"`
	Items          []QuoteLineDTO    `json:"items"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// NewQuoteDTO maps a quote row plus its lines into the public shape.
func NewQuoteDTO(quote *models.Quote) *QuoteDTO {
	items := make([]QuoteLineDTO, 0, len(quote.Items))
	for i := range quote.Items {
		item := &quote.Items[i]
		items = append(items, QuoteLineDTO{
			ID:             item.ID,
			ProductSKU:     item.ProductSKU,
			ProductName:    item.ProductName,
			ProductBrand:   item.ProductBrand,
			UnitPrice:      item.UnitPrice,
			Quantity:       item.Quantity,
			DiscountAmount: item.DiscountAmount,
			TaxAmount:      item.TaxAmount,
			TotalPrice:     item.TotalPrice,
			ItemNotes:      item.ItemNotes,
		})
	}
	return &QuoteDTO{
		ID:             quote.ID,
		StoreID:        quote.StoreID,
		QuoteNumber:    quote.QuoteNumber,
		ClientName:     quote.ClientName,
		ClientEmail:    quote.ClientEmail,
		ClientPhone:    quote.ClientPhone,
		CompanyName:    quote.CompanyName,
		CompanyTaxID:   quote.CompanyTaxID,
		Status:         quote.Status,
		Subtotal:       quote.Subtotal,
		TaxAmount:      quote.TaxAmount,
		DiscountAmount: quote.DiscountAmount,
		TotalAmount:    quote.TotalAmount,
		Currency:       quote.Currency,
		QuoteDate:      quote.QuoteDate,
		ExpirationDate: quote.ExpirationDate,
		SentAt:         quote.SentAt,
		DecidedAt:      quote.DecidedAt,
		Notes:          quote.Notes,
		Items:          items,
		CreatedAt:      quote.CreatedAt,
		UpdatedAt:      quote.UpdatedAt,
	}
}

// QuoteListResult is one page of a store's quotes.
type QuoteListResult struct {
	Quotes     []QuoteDTO `json:"quotes"`
	NextCursor string     `json:"next_cursor,omitempty"`
}
