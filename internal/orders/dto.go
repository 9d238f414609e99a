package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
	"github.com/dmendezdev/partsmarket-backend/pkg/pagination"
	"github.com/dmendezdev/partsmarket-backend/pkg/types"
)

// ListQuery captures order listing filters for one store.
type ListQuery struct {
	Pagination pagination.Params
	Status     *enums.OrderStatus
	Channel    *enums.OrderChannel
}

// LineItemDTO is one frozen order line.
type LineItemDTO struct {
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

// OrderDTO is the public shape of one order.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	StoreID         uuid.UUID           `json:"store_id"`
	OrderNumber     string              `json:"order_number"`
	Channel         enums.OrderChannel  `json:"channel"`
	CustomerName    string              `json:"customer_name"`
	CustomerEmail   string              `json:"customer_email"`
	CustomerPhone   *string             `json:"customer_phone,omitempty"`
	DeliveryAddress types.Address       `json:"delivery_address"`
	Notes           *string             `json:"notes,omitempty"`
	PONumber        *string             `json:"po_number,omitempty"`
	PaymentTerms    *string             `json:"payment_terms,omitempty"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	TaxAmount       decimal.Decimal     `json:"tax_amount"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount"`
	ShippingCost    decimal.Decimal     `json:"shipping_cost"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	Currency        enums.Currency      `json:"currency"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	Priority        enums.Priority      `json:"priority"`
	ConfirmedAt     *time.Time          `json:"confirmed_at,omitempty"`
	ShippedAt       *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	PaidAt          *time.Time          `json:"paid_at,omitempty"`
	RefundedAt      *time.Time          `json:"refunded_at,omitempty"`
	Items           []LineItemDTO       `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// NewOrderDTO maps an order row plus its lines into the public shape.
func NewOrderDTO(order *models.Order) *OrderDTO {
	items := make([]LineItemDTO, 0, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		items = append(items, LineItemDTO{
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
	return &OrderDTO{
		ID:              order.ID,
		StoreID:         order.StoreID,
		OrderNumber:     order.OrderNumber,
		Channel:         order.Channel,
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		CustomerPhone:   order.CustomerPhone,
		DeliveryAddress: order.DeliveryAddress,
		Notes:           order.Notes,
		PONumber:        order.PONumber,
		PaymentTerms:    order.PaymentTerms,
		Subtotal:        order.Subtotal,
		TaxAmount:       order.TaxAmount,
		DiscountAmount:  order.DiscountAmount,
		ShippingCost:    order.ShippingCost,
		TotalAmount:     order.TotalAmount,
		Currency:        order.Currency,
		Status:          order.Status,
		PaymentStatus:   order.PaymentStatus,
		Priority:        order.Priority,
		ConfirmedAt:     order.ConfirmedAt,
		ShippedAt:       order.ShippedAt,
		DeliveredAt:     order.DeliveredAt,
		CancelledAt:     order.CancelledAt,
		PaidAt:          order.PaidAt,
		RefundedAt:      order.RefundedAt,
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

// OrderListResult is one page of a store's orders.
type OrderListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}
