package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
)

// OrderCreatedEvent signals a checkout that produced a new order.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID          `json:"order_id"`
	StoreID     uuid.UUID          `json:"store_id"`
	OrderNumber string             `json:"order_number"`
	Channel     enums.OrderChannel `json:"channel"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Currency    enums.Currency     `json:"currency"`
	ItemCount   int                `json:"item_count"`
}

// OrderStatusChangedEvent is emitted on every fulfillment transition.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	StoreID     uuid.UUID         `json:"store_id"`
	OrderNumber string            `json:"order_number"`
	FromStatus  enums.OrderStatus `json:"from_status"`
	ToStatus    enums.OrderStatus `json:"to_status"`
	ChangedAt   time.Time         `json:"changed_at"`
}

// OrderPaymentEvent reports a payment status change on an order.
type OrderPaymentEvent struct {
	OrderID       uuid.UUID           `json:"order_id"`
	StoreID       uuid.UUID           `json:"store_id"`
	OrderNumber   string              `json:"order_number"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	ChangedAt     time.Time           `json:"changed_at"`
}

// QuoteCreatedEvent signals that a draft quotation was built.
type QuoteCreatedEvent struct {
	QuoteID     uuid.UUID       `json:"quote_id"`
	StoreID     uuid.UUID       `json:"store_id"`
	QuoteNumber string          `json:"quote_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

// QuoteStatusChangedEvent is emitted on every quote lifecycle transition,
// including cron-driven expiry.
type QuoteStatusChangedEvent struct {
	QuoteID     uuid.UUID         `json:"quote_id"`
	StoreID     uuid.UUID         `json:"store_id"`
	QuoteNumber string            `json:"quote_number"`
	FromStatus  enums.QuoteStatus `json:"from_status"`
	ToStatus    enums.QuoteStatus `json:"to_status"`
	ChangedAt   time.Time         `json:"changed_at"`
}
