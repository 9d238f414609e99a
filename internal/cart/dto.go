package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
	"github.com/dmendezdev/partsmarket-backend/pkg/pricing"
	"github.com/dmendezdev/partsmarket-backend/pkg/types"
)

// ItemDTO is one cart line with its derived amounts.
type ItemDTO struct {
	ID                 uuid.UUID       `json:"id"`
	ProductSKU         string          `json:"product_sku"`
	ProductName        string          `json:"product_name"`
	ProductDescription *string         `json:"product_description,omitempty"`
	ProductBrand       string          `json:"product_brand"`
	ProductImage       *string         `json:"product_image,omitempty"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	Quantity           int             `json:"quantity"`
	DiscountPct        decimal.Decimal `json:"discount_pct"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	ItemNotes          *string         `json:"item_notes,omitempty"`
}

// TotalsDTO is the cart-level fold over its lines.
type TotalsDTO struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// CartDTO is the public shape of the session cart.
type CartDTO struct {
	ID              uuid.UUID        `json:"id"`
	StoreID         uuid.UUID        `json:"store_id"`
	SessionID       string           `json:"session_id"`
	Status          enums.CartStatus `json:"status"`
	CustomerName    *string          `json:"customer_name,omitempty"`
	CustomerEmail   *string          `json:"customer_email,omitempty"`
	CustomerPhone   *string          `json:"customer_phone,omitempty"`
	DeliveryAddress *types.Address   `json:"delivery_address,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
	Items           []ItemDTO        `json:"items"`
	Totals          TotalsDTO        `json:"totals"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewCartDTO maps a cart row plus its items into the public shape, folding
// line amounts into document totals.
func NewCartDTO(cart *models.CartRecord, shippingCost decimal.Decimal) *CartDTO {
	items := make([]ItemDTO, 0, len(cart.Items))
	lines := make([]pricing.LineAmounts, 0, len(cart.Items))
	for i := range cart.Items {
		item := &cart.Items[i]
		items = append(items, ItemDTO{
			ID:                 item.ID,
			ProductSKU:         item.ProductSKU,
			ProductName:        item.ProductName,
			ProductDescription: item.ProductDescription,
			ProductBrand:       item.ProductBrand,
			ProductImage:       item.ProductImage,
			UnitPrice:          item.UnitPrice,
			Quantity:           item.Quantity,
			DiscountPct:        item.DiscountPct,
			DiscountAmount:     item.DiscountAmount,
			TaxRate:            item.TaxRate,
			TaxAmount:          item.TaxAmount,
			TotalPrice:         item.TotalPrice,
			ItemNotes:          item.ItemNotes,
		})
		lines = append(lines, pricing.LineAmounts{
			UnitPrice:      item.UnitPrice,
			Quantity:       item.Quantity,
			DiscountAmount: item.DiscountAmount,
			TaxRate:        item.TaxRate,
			TaxAmount:      item.TaxAmount,
			TotalPrice:     item.TotalPrice,
		})
	}
	totals := pricing.Aggregate(lines, shippingCost)
	return &CartDTO{
		ID:              cart.ID,
		StoreID:         cart.StoreID,
		SessionID:       cart.SessionID,
		Status:          cart.Status,
		CustomerName:    cart.CustomerName,
		CustomerEmail:   cart.CustomerEmail,
		CustomerPhone:   cart.CustomerPhone,
		DeliveryAddress: cart.DeliveryAddress,
		Notes:           cart.Notes,
		Items:           items,
		Totals: TotalsDTO{
			Subtotal:      totals.Subtotal,
			TaxTotal:      totals.TaxTotal,
			DiscountTotal: totals.DiscountTotal,
			ShippingCost:  totals.ShippingCost,
			GrandTotal:    totals.GrandTotal,
		},
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
}
