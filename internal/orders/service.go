package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmendezdev/partsmarket-backend/internal/cart"
	"github.com/dmendezdev/partsmarket-backend/pkg/db"
	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
	pkgerrors "github.com/dmendezdev/partsmarket-backend/pkg/errors"
	"github.com/dmendezdev/partsmarket-backend/pkg/outbox"
	"github.com/dmendezdev/partsmarket-backend/pkg/outbox/payloads"
	"github.com/dmendezdev/partsmarket-backend/pkg/pricing"
)

// maxOrderNumberAttempts bounds the regenerate-on-conflict retry at checkout.
const maxOrderNumberAttempts = 3

// orderTransitions is the fulfillment DAG. Delivered and cancelled are
// absorbing; cancellation is reachable from every non-terminal state.
var orderTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:  {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:    {enums.OrderStatusDelivered, enums.OrderStatusCancelled},
	enums.OrderStatusDelivered:  {},
	enums.OrderStatusCancelled:  {},
}

// Service owns checkout and the order lifecycle.
type Service interface {
	Checkout(ctx context.Context, storeID uuid.UUID, sessionID string, input CheckoutInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, storeID, orderID uuid.UUID) (*OrderDTO, error)
	GetOrderByNumber(ctx context.Context, storeID uuid.UUID, number string) (*OrderDTO, error)
	ListOrders(ctx context.Context, storeID uuid.UUID, query ListQuery) (*OrderListResult, error)
	SetStatus(ctx context.Context, storeID, orderID uuid.UUID, to enums.OrderStatus) (*OrderDTO, error)
	SetPaymentStatus(ctx context.Context, storeID, orderID uuid.UUID, to enums.PaymentStatus) (*OrderDTO, error)
}

// CheckoutInput selects the sales channel and B2B purchase-order metadata.
type CheckoutInput struct {
	Channel      enums.OrderChannel
	Priority     *enums.Priority
	PONumber     *string
	PaymentTerms *string
}

type service struct {
	repo         Repository
	carts        cart.Repository
	tx           txRunner
	outbox       outboxEmitter
	seq          sequencer
	shippingCost decimal.Decimal
	now          func() time.Time
}

// NewService constructs an orders service instance.
func NewService(repo Repository, carts cart.Repository, tx txRunner, emitter outboxEmitter, seq sequencer, shippingCost decimal.Decimal) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if seq == nil {
		return nil, fmt.Errorf("sequencer required")
	}
	if shippingCost.IsNegative() {
		return nil, fmt.Errorf("shipping cost cannot be negative")
	}
	return &service{
		repo:         repo,
		carts:        carts,
		tx:           tx,
		outbox:       emitter,
		seq:          seq,
		shippingCost: shippingCost,
		now:          time.Now,
	}, nil
}

// Checkout converts the session's active cart into an immutable order:
// validates the cart, recomputes totals server-side, decrements stock, and
// emits order_created, all in one transaction.
func (s *service) Checkout(ctx context.Context, storeID uuid.UUID, sessionID string, input CheckoutInput) (*OrderDTO, error) {
	channel := input.Channel
	if channel == "" {
		channel = enums.OrderChannelB2C
	}
	if !channel.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown sales channel")
	}
	if channel != enums.OrderChannelB2B && (input.PONumber != nil || input.PaymentTerms != nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase-order fields are b2b only")
	}
	priority := enums.PriorityNormal
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
		}
		priority = *input.Priority
	}

	cartRow, err := s.carts.FindActiveCart(ctx, storeID, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active cart for session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(cartRow.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if err := validateCustomer(cartRow); err != nil {
		return nil, err
	}
	lines, err := recomputeCartLines(cartRow)
	if err != nil {
		return nil, err
	}
	totals := pricing.Aggregate(lines, s.shippingCost)

	var created *models.Order
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		number, numErr := s.nextOrderNumber(ctx, storeID, channel)
		if numErr != nil {
			return nil, numErr
		}

		txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			carts := s.carts.WithTx(tx)

			for i := range cartRow.Items {
				item := &cartRow.Items[i]
				if decErr := repo.DecrementStock(ctx, storeID, item.ProductSKU, item.Quantity); decErr != nil {
					if errors.Is(decErr, gorm.ErrRecordNotFound) {
						return pkgerrors.New(pkgerrors.CodeValidation,
							fmt.Sprintf("insufficient stock for %s", item.ProductSKU))
					}
					return pkgerrors.Wrap(pkgerrors.CodeDependency, decErr, "db: decrement stock")
				}
			}

			order := buildOrder(cartRow, storeID, number, channel, priority, input, totals)
			if _, createErr := repo.CreateOrder(ctx, order); createErr != nil {
				return createErr
			}
			items := buildOrderLines(order.ID, cartRow.Items)
			if lineErr := repo.CreateLineItems(ctx, items); lineErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, lineErr, "db: insert order lines")
			}
			order.Items = items

			if cartErr := carts.UpdateCartStatus(ctx, cartRow.ID, enums.CartStatusConverted); cartErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, cartErr, "db: convert cart")
			}

			if emitErr := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderCreated,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Actor:         &outbox.ActorRef{StoreID: storeID, SessionID: sessionID},
				Data: payloads.OrderCreatedEvent{
					OrderID:     order.ID,
					StoreID:     storeID,
					OrderNumber: order.OrderNumber,
					Channel:     order.Channel,
					TotalAmount: order.TotalAmount,
					Currency:    order.Currency,
					ItemCount:   len(items),
				},
			}); emitErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, emitErr, "emit order_created")
			}

			created = order
			return nil
		})
		if txErr == nil {
			return NewOrderDTO(created), nil
		}
		if db.IsUniqueViolation(txErr, "ux_orders_store_number") {
			continue
		}
		var typed *pkgerrors.Error
		if errors.As(txErr, &typed) {
			return nil, txErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "checkout transaction")
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not allocate an order number")
}

// GetOrder loads one order with its lines.
func (s *service) GetOrder(ctx context.Context, storeID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.findOrder(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

// GetOrderByNumber loads one order by its customer-facing number.
func (s *service) GetOrderByNumber(ctx context.Context, storeID uuid.UUID, number string) (*OrderDTO, error) {
	order, err := s.repo.FindOrderByNumber(ctx, storeID, strings.TrimSpace(number))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return NewOrderDTO(order), nil
}

// ListOrders returns one page of the store's orders.
func (s *service) ListOrders(ctx context.Context, storeID uuid.UUID, query ListQuery) (*OrderListResult, error) {
	rows, next, err := s.repo.List(ctx, storeID, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewOrderDTO(&rows[i]))
	}
	return &OrderListResult{Orders: dtos, NextCursor: next}, nil
}

// SetStatus moves the order along the fulfillment DAG. Setting the current
// status again is a no-op; an illegal transition is a state conflict. Each
// transition stamps its timestamp once and emits order_status_changed.
func (s *service) SetStatus(ctx context.Context, storeID, orderID uuid.UUID, to enums.OrderStatus) (*OrderDTO, error) {
	if !to.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	order, err := s.findOrder(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == to {
		return NewOrderDTO(order), nil
	}
	if !transitionAllowed(order.Status, to) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, to))
	}

	now := s.now().UTC()
	updates := map[string]any{"status": to}
	if column := statusTimestampColumn(to); column != "" {
		updates[column] = now
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if updErr := s.repo.WithTx(tx).UpdateOrder(ctx, order.ID, updates); updErr != nil {
			return updErr
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{StoreID: storeID},
			Data: payloads.OrderStatusChangedEvent{
				OrderID:     order.ID,
				StoreID:     storeID,
				OrderNumber: order.OrderNumber,
				FromStatus:  order.Status,
				ToStatus:    to,
				ChangedAt:   now,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
	}
	return s.GetOrder(ctx, storeID, orderID)
}

// SetPaymentStatus moves the money side of the order: paid requires a
// pending payment on a non-cancelled order, refunded requires paid.
func (s *service) SetPaymentStatus(ctx context.Context, storeID, orderID uuid.UUID, to enums.PaymentStatus) (*OrderDTO, error) {
	if !to.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment status")
	}
	order, err := s.findOrder(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == to {
		return NewOrderDTO(order), nil
	}

	now := s.now().UTC()
	updates := map[string]any{"payment_status": to}
	var eventType enums.OutboxEventType

	switch to {
	case enums.PaymentStatusPaid:
		if order.PaymentStatus != enums.PaymentStatusPending {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment is not pending")
		}
		if order.Status == enums.OrderStatusCancelled {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled orders cannot be paid")
		}
		updates["paid_at"] = now
		eventType = enums.EventOrderPaid
	case enums.PaymentStatusRefunded:
		if order.PaymentStatus != enums.PaymentStatusPaid {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only paid orders can be refunded")
		}
		updates["refunded_at"] = now
		eventType = enums.EventOrderRefunded
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment status cannot return to pending")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if updErr := s.repo.WithTx(tx).UpdateOrder(ctx, order.ID, updates); updErr != nil {
			return updErr
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{StoreID: storeID},
			Data: payloads.OrderPaymentEvent{
				OrderID:       order.ID,
				StoreID:       storeID,
				OrderNumber:   order.OrderNumber,
				PaymentStatus: to,
				TotalAmount:   order.TotalAmount,
				ChangedAt:     now,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update payment status")
	}
	return s.GetOrder(ctx, storeID, orderID)
}

func (s *service) findOrder(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindOrder(ctx, storeID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// nextOrderNumber allocates a number for the channel: a redis daily sequence
// for retail, the checkout instant for B2B purchase orders.
func (s *service) nextOrderNumber(ctx context.Context, storeID uuid.UUID, channel enums.OrderChannel) (string, error) {
	now := s.now().UTC()
	if channel == enums.OrderChannelB2B {
		return b2bOrderNumber(now), nil
	}
	seq, err := s.seq.NextInSequence(ctx, orderSequenceName(storeID, now), sequenceTTL)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: order sequence")
	}
	return retailOrderNumber(now, seq), nil
}

func validateCustomer(cartRow *models.CartRecord) error {
	if cartRow.CustomerName == nil || strings.TrimSpace(*cartRow.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if cartRow.CustomerEmail == nil || strings.TrimSpace(*cartRow.CustomerEmail) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	if cartRow.DeliveryAddress == nil || !cartRow.DeliveryAddress.Validate() {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery address is incomplete")
	}
	return nil
}

// recomputeCartLines re-derives every line and rejects drift between the
// cart snapshot and the recomputation, so a stale snapshot can never price
// an order.
func recomputeCartLines(cartRow *models.CartRecord) ([]pricing.LineAmounts, error) {
	lines := make([]pricing.LineAmounts, 0, len(cartRow.Items))
	for i := range cartRow.Items {
		item := &cartRow.Items[i]
		line, err := pricing.ComputeLine(item.UnitPrice, item.Quantity, item.DiscountAmount)
		if err != nil {
			return nil, err
		}
		if !line.TaxAmount.Equal(item.TaxAmount) || !line.TotalPrice.Equal(item.TotalPrice) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("cart line %s is out of date", item.ProductSKU))
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func buildOrder(cartRow *models.CartRecord, storeID uuid.UUID, number string, channel enums.OrderChannel, priority enums.Priority, input CheckoutInput, totals pricing.Totals) *models.Order {
	return &models.Order{
		StoreID:         storeID,
		OrderNumber:     number,
		Channel:         channel,
		CustomerName:    *cartRow.CustomerName,
		CustomerEmail:   *cartRow.CustomerEmail,
		CustomerPhone:   cartRow.CustomerPhone,
		DeliveryAddress: *cartRow.DeliveryAddress,
		Notes:           cartRow.Notes,
		PONumber:        input.PONumber,
		PaymentTerms:    input.PaymentTerms,
		Subtotal:        totals.Subtotal,
		TaxAmount:       totals.TaxTotal,
		DiscountAmount:  decimal.Zero,
		ShippingCost:    totals.ShippingCost,
		TotalAmount:     totals.GrandTotal,
		Currency:        enums.DefaultCurrency,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		Priority:        priority,
	}
}

func buildOrderLines(orderID uuid.UUID, items []models.CartItem) []models.OrderLineItem {
	lines := make([]models.OrderLineItem, 0, len(items))
	for i := range items {
		item := &items[i]
		lines = append(lines, models.OrderLineItem{
			OrderID:            orderID,
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
	}
	return lines
}

func transitionAllowed(from, to enums.OrderStatus) bool {
	for _, candidate := range orderTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func statusTimestampColumn(status enums.OrderStatus) string {
	switch status {
	case enums.OrderStatusConfirmed:
		return "confirmed_at"
	case enums.OrderStatusShipped:
		return "shipped_at"
	case enums.OrderStatusDelivered:
		return "delivered_at"
	case enums.OrderStatusCancelled:
		return "cancelled_at"
	default:
		return ""
	}
}
