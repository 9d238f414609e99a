package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dmendezdev/partsmarket-backend/internal/cart"
	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
	pkgerrors "github.com/dmendezdev/partsmarket-backend/pkg/errors"
	"github.com/dmendezdev/partsmarket-backend/pkg/outbox"
	"github.com/dmendezdev/partsmarket-backend/pkg/types"
)

type stubOrdersRepo struct {
	orders         map[uuid.UUID]*models.Order
	stock          map[string]int
	createOrder    func(ctx context.Context, order *models.Order) (*models.Order, error)
	decrementCalls []string
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{orders: map[uuid.UUID]*models.Order{}, stock: map[string]int{}}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.createOrder != nil {
		return s.createOrder(ctx, order)
	}
	order.ID = uuid.New()
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) CreateLineItems(ctx context.Context, items []models.OrderLineItem) error {
	for i := range items {
		items[i].ID = uuid.New()
	}
	if len(items) > 0 {
		if order, ok := s.orders[items[0].OrderID]; ok {
			order.Items = items
		}
	}
	return nil
}

func (s *stubOrdersRepo) FindOrder(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[orderID]
	if !ok || order.StoreID != storeID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *order
	return &cp, nil
}

func (s *stubOrdersRepo) FindOrderByNumber(ctx context.Context, storeID uuid.UUID, number string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.StoreID == storeID && order.OrderNumber == number {
			cp := *order
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) List(ctx context.Context, storeID uuid.UUID, query ListQuery) ([]models.Order, string, error) {
	return nil, "", nil
}

func (s *stubOrdersRepo) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	order, ok := s.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, ok := updates["status"].(enums.OrderStatus); ok {
		order.Status = status
	}
	if status, ok := updates["payment_status"].(enums.PaymentStatus); ok {
		order.PaymentStatus = status
	}
	for column, stamp := range map[string]**time.Time{
		"confirmed_at": &order.ConfirmedAt,
		"shipped_at":   &order.ShippedAt,
		"delivered_at": &order.DeliveredAt,
		"cancelled_at": &order.CancelledAt,
		"paid_at":      &order.PaidAt,
		"refunded_at":  &order.RefundedAt,
	} {
		if value, ok := updates[column].(time.Time); ok {
			at := value
			*stamp = &at
		}
	}
	return nil
}

func (s *stubOrdersRepo) DecrementStock(ctx context.Context, storeID uuid.UUID, sku string, quantity int) error {
	s.decrementCalls = append(s.decrementCalls, fmt.Sprintf("%s:%d", sku, quantity))
	have, ok := s.stock[sku]
	if !ok || have < quantity {
		return gorm.ErrRecordNotFound
	}
	s.stock[sku] = have - quantity
	return nil
}

// memCarts is the minimal cart.Repository used by checkout tests.
type memCarts struct {
	cart *models.CartRecord
}

func (m *memCarts) WithTx(tx *gorm.DB) cart.Repository { return m }

func (m *memCarts) CreateCart(ctx context.Context, c *models.CartRecord) (*models.CartRecord, error) {
	return c, nil
}

func (m *memCarts) FindCart(ctx context.Context, cartID uuid.UUID) (*models.CartRecord, error) {
	if m.cart != nil && m.cart.ID == cartID {
		return m.cart, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memCarts) FindActiveCart(ctx context.Context, storeID uuid.UUID, sessionID string) (*models.CartRecord, error) {
	if m.cart != nil && m.cart.StoreID == storeID && m.cart.SessionID == sessionID && m.cart.Status == enums.CartStatusActive {
		return m.cart, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memCarts) UpdateCart(ctx context.Context, c *models.CartRecord) error { return nil }

func (m *memCarts) UpdateCartStatus(ctx context.Context, cartID uuid.UUID, status enums.CartStatus) error {
	if m.cart == nil || m.cart.ID != cartID {
		return gorm.ErrRecordNotFound
	}
	m.cart.Status = status
	return nil
}

func (m *memCarts) CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	return item, nil
}

func (m *memCarts) UpdateItem(ctx context.Context, item *models.CartItem) error { return nil }

func (m *memCarts) DeleteItem(ctx context.Context, cartID uuid.UUID, sku string) error { return nil }

func (m *memCarts) DeleteItems(ctx context.Context, cartID uuid.UUID) error { return nil }

func (m *memCarts) MarkAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubSequencer struct {
	next  int64
	calls int
}

func (s *stubSequencer) NextInSequence(ctx context.Context, name string, ttl time.Duration) (int64, error) {
	s.calls++
	s.next++
	return s.next, nil
}

func checkoutCart(storeID uuid.UUID) *models.CartRecord {
	name := "Laura Peña"
	email := "laura@example.com"
	return &models.CartRecord{
		ID:            uuid.New(),
		StoreID:       storeID,
		SessionID:     "sess-1",
		Status:        enums.CartStatusActive,
		CustomerName:  &name,
		CustomerEmail: &email,
		DeliveryAddress: &types.Address{
			Line1:      "Av. Juárez 100",
			City:       "Monterrey",
			State:      "NL",
			PostalCode: "64000",
			Country:    "MX",
		},
		Items: []models.CartItem{{
			ID:           uuid.New(),
			ProductSKU:   "BP-100",
			ProductName:  "Brake Pad Set",
			ProductBrand: "Brembo",
			UnitPrice:    decimal.NewFromInt(120),
			Quantity:     2,
			TaxRate:      decimal.NewFromInt(16),
			TaxAmount:    decimal.RequireFromString("38.40"),
			TotalPrice:   decimal.NewFromInt(240),
		}},
	}
}

func newOrdersService(t *testing.T, repo Repository, carts cart.Repository, emitter outboxEmitter, seq sequencer) Service {
	t.Helper()
	svc, err := NewService(repo, carts, stubTxRunner{}, emitter, seq, decimal.Zero)
	require.NoError(t, err)
	return svc
}

func TestServiceCheckout_happyPath(t *testing.T) {
	storeID := uuid.New()
	repo := newStubOrdersRepo()
	repo.stock["BP-100"] = 5
	carts := &memCarts{cart: checkoutCart(storeID)}
	emitter := &stubOutbox{}
	seq := &stubSequencer{}
	svc := newOrdersService(t, repo, carts, emitter, seq)

	dto, err := svc.Checkout(context.Background(), storeID, "sess-1", CheckoutInput{})
	require.NoError(t, err)

	assert.Regexp(t, `^ORD-\d{4}-\d{4}-0001$`, dto.OrderNumber)
	assert.Equal(t, enums.OrderChannelB2C, dto.Channel)
	assert.Equal(t, enums.OrderStatusPending, dto.Status)
	assert.Equal(t, enums.PaymentStatusPending, dto.PaymentStatus)
	assert.True(t, dto.Subtotal.Equal(decimal.NewFromInt(240)))
	assert.True(t, dto.TaxAmount.Equal(decimal.RequireFromString("38.40")))
	assert.True(t, dto.TotalAmount.Equal(decimal.RequireFromString("278.40")), "total %s", dto.TotalAmount)
	require.Len(t, dto.Items, 1)

	assert.Equal(t, 3, repo.stock["BP-100"])
	assert.Equal(t, enums.CartStatusConverted, carts.cart.Status)
	require.Len(t, emitter.events, 1)
	assert.Equal(t, enums.EventOrderCreated, emitter.events[0].EventType)
}

func TestServiceCheckout_b2bNumber(t *testing.T) {
	storeID := uuid.New()
	repo := newStubOrdersRepo()
	repo.stock["BP-100"] = 5
	carts := &memCarts{cart: checkoutCart(storeID)}
	seq := &stubSequencer{}
	svc := newOrdersService(t, repo, carts, &stubOutbox{}, seq)

	po := "PO-4711"
	terms := "net30"
	dto, err := svc.Checkout(context.Background(), storeID, "sess-1", CheckoutInput{
		Channel:      enums.OrderChannelB2B,
		PONumber:     &po,
		PaymentTerms: &terms,
	})
	require.NoError(t, err)

	assert.Regexp(t, `^PO-\d{8}-\d{6}$`, dto.OrderNumber)
	assert.Equal(t, 0, seq.calls, "b2b numbers must not consume the retail sequence")
	require.NotNil(t, dto.PONumber)
	assert.Equal(t, po, *dto.PONumber)
}

func TestServiceCheckout_rejectsPOFieldsOnRetail(t *testing.T) {
	storeID := uuid.New()
	repo := newStubOrdersRepo()
	carts := &memCarts{cart: checkoutCart(storeID)}
	svc := newOrdersService(t, repo, carts, &stubOutbox{}, &stubSequencer{})

	po := "PO-4711"
	_, err := svc.Checkout(context.Background(), storeID, "sess-1", CheckoutInput{PONumber: &po})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceCheckout_emptyCart(t *testing.T) {
	storeID := uuid.New()
	cartRow := checkoutCart(storeID)
	cartRow.Items = nil
	svc := newOrdersService(t, newStubOrdersRepo(), &memCarts{cart: cartRow}, &stubOutbox{}, &stubSequencer{})

	_, err := svc.Checkout(context.Background(), storeID, "sess-1", CheckoutInput{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceCheckout_missingCustomer(t *testing.T) {
	storeID := uuid.New()
	cartRow := checkoutCart(storeID)
	cartRow.CustomerEmail = nil
	svc := newOrdersService(t, newStubOrdersRepo(), &memCarts{cart: cartRow}, &stubOutbox{}, &stubSequencer{})

	_, err := svc.Checkout(context.Background(), storeID, "sess-1", CheckoutInput{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceCheckout_insufficientStock(t *testing.T) {
	storeID := uuid.New()
	repo := newStubOrdersRepo()
	repo.stock["BP-100"] = 1
	svc := newOrdersService(t, repo, &memCarts{cart: checkoutCart(storeID)}, &stubOutbox{}, &stubSequencer{})

	_, err := svc.Checkout(context.Background(), storeID, "sess-1", CheckoutInput{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceCheckout_staleCartLine(t *testing.T) {
	storeID := uuid.New()
	cartRow := checkoutCart(storeID)
	cartRow.Items[0].TotalPrice = decimal.NewFromInt(999)
	repo := newStubOrdersRepo()
	repo.stock["BP-100"] = 5
	svc := newOrdersService(t, repo, &memCarts{cart: cartRow}, &stubOutbox{}, &stubSequencer{})

	_, err := svc.Checkout(context.Background(), storeID, "sess-1", CheckoutInput{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestServiceCheckout_retriesNumberConflict(t *testing.T) {
	storeID := uuid.New()
	repo := newStubOrdersRepo()
	repo.stock["BP-100"] = 5
	conflicts := 1
	repo.createOrder = func(ctx context.Context, order *models.Order) (*models.Order, error) {
		if conflicts > 0 {
			conflicts--
			return nil, errors.New(`duplicate key value violates unique constraint "ux_orders_store_number"`)
		}
		order.ID = uuid.New()
		repo.orders[order.ID] = order
		return order, nil
	}
	seq := &stubSequencer{}
	svc := newOrdersService(t, repo, &memCarts{cart: checkoutCart(storeID)}, &stubOutbox{}, seq)

	dto, err := svc.Checkout(context.Background(), storeID, "sess-1", CheckoutInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, seq.calls, "the colliding number must be regenerated")
	assert.Regexp(t, `-0002$`, dto.OrderNumber)
}

func seedServiceOrder(repo *stubOrdersRepo, storeID uuid.UUID, status enums.OrderStatus, payment enums.PaymentStatus) *models.Order {
	order := &models.Order{
		ID:            uuid.New(),
		StoreID:       storeID,
		OrderNumber:   "ORD-2026-0829-0001",
		Channel:       enums.OrderChannelB2C,
		CustomerName:  "Laura Peña",
		CustomerEmail: "laura@example.com",
		TotalAmount:   decimal.RequireFromString("278.40"),
		Currency:      enums.CurrencyMXN,
		Status:        status,
		PaymentStatus: payment,
		Priority:      enums.PriorityNormal,
	}
	repo.orders[order.ID] = order
	return order
}

func TestServiceSetStatus_legalPath(t *testing.T) {
	storeID := uuid.New()
	repo := newStubOrdersRepo()
	order := seedServiceOrder(repo, storeID, enums.OrderStatusPending, enums.PaymentStatusPending)
	emitter := &stubOutbox{}
	svc := newOrdersService(t, repo, &memCarts{}, emitter, &stubSequencer{})

	for _, to := range []enums.OrderStatus{
		enums.OrderStatusConfirmed,
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
	} {
		dto, err := svc.SetStatus(context.Background(), storeID, order.ID, to)
		require.NoError(t, err, "transition to %s", to)
		assert.Equal(t, to, dto.Status)
	}

	final := repo.orders[order.ID]
	require.NotNil(t, final.ConfirmedAt)
	require.NotNil(t, final.ShippedAt)
	require.NotNil(t, final.DeliveredAt)
	assert.Nil(t, final.CancelledAt)
	assert.Len(t, emitter.events, 4)
}

func TestServiceSetStatus_illegalTransitions(t *testing.T) {
	storeID := uuid.New()

	cases := []struct {
		from enums.OrderStatus
		to   enums.OrderStatus
	}{
		{enums.OrderStatusPending, enums.OrderStatusShipped},
		{enums.OrderStatusPending, enums.OrderStatusDelivered},
		{enums.OrderStatusConfirmed, enums.OrderStatusPending},
		{enums.OrderStatusDelivered, enums.OrderStatusCancelled},
		{enums.OrderStatusCancelled, enums.OrderStatusConfirmed},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s_to_%s", tc.from, tc.to), func(t *testing.T) {
			repo := newStubOrdersRepo()
			order := seedServiceOrder(repo, storeID, tc.from, enums.PaymentStatusPending)
			svc := newOrdersService(t, repo, &memCarts{}, &stubOutbox{}, &stubSequencer{})

			_, err := svc.SetStatus(context.Background(), storeID, order.ID, tc.to)
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
		})
	}
}

func TestServiceSetStatus_sameStatusIsNoOp(t *testing.T) {
	storeID := uuid.New()
	repo := newStubOrdersRepo()
	order := seedServiceOrder(repo, storeID, enums.OrderStatusConfirmed, enums.PaymentStatusPending)
	stamp := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	repo.orders[order.ID].ConfirmedAt = &stamp
	emitter := &stubOutbox{}
	svc := newOrdersService(t, repo, &memCarts{}, emitter, &stubSequencer{})

	dto, err := svc.SetStatus(context.Background(), storeID, order.ID, enums.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, dto.Status)
	require.NotNil(t, dto.ConfirmedAt)
	assert.True(t, dto.ConfirmedAt.Equal(stamp), "timestamp must not be restamped")
	assert.Empty(t, emitter.events, "no event on a no-op")
}

func TestServiceSetStatus_cancelFromShipped(t *testing.T) {
	storeID := uuid.New()
	repo := newStubOrdersRepo()
	order := seedServiceOrder(repo, storeID, enums.OrderStatusShipped, enums.PaymentStatusPending)
	svc := newOrdersService(t, repo, &memCarts{}, &stubOutbox{}, &stubSequencer{})

	dto, err := svc.SetStatus(context.Background(), storeID, order.ID, enums.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, dto.Status)
	require.NotNil(t, dto.CancelledAt)
}

func TestServiceSetPaymentStatus(t *testing.T) {
	storeID := uuid.New()

	t.Run("paid then refunded", func(t *testing.T) {
		repo := newStubOrdersRepo()
		order := seedServiceOrder(repo, storeID, enums.OrderStatusConfirmed, enums.PaymentStatusPending)
		emitter := &stubOutbox{}
		svc := newOrdersService(t, repo, &memCarts{}, emitter, &stubSequencer{})

		dto, err := svc.SetPaymentStatus(context.Background(), storeID, order.ID, enums.PaymentStatusPaid)
		require.NoError(t, err)
		require.NotNil(t, dto.PaidAt)

		dto, err = svc.SetPaymentStatus(context.Background(), storeID, order.ID, enums.PaymentStatusRefunded)
		require.NoError(t, err)
		require.NotNil(t, dto.RefundedAt)

		require.Len(t, emitter.events, 2)
		assert.Equal(t, enums.EventOrderPaid, emitter.events[0].EventType)
		assert.Equal(t, enums.EventOrderRefunded, emitter.events[1].EventType)
	})

	t.Run("refund requires paid", func(t *testing.T) {
		repo := newStubOrdersRepo()
		order := seedServiceOrder(repo, storeID, enums.OrderStatusConfirmed, enums.PaymentStatusPending)
		svc := newOrdersService(t, repo, &memCarts{}, &stubOutbox{}, &stubSequencer{})

		_, err := svc.SetPaymentStatus(context.Background(), storeID, order.ID, enums.PaymentStatusRefunded)
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
	})

	t.Run("cancelled orders cannot be paid", func(t *testing.T) {
		repo := newStubOrdersRepo()
		order := seedServiceOrder(repo, storeID, enums.OrderStatusCancelled, enums.PaymentStatusPending)
		svc := newOrdersService(t, repo, &memCarts{}, &stubOutbox{}, &stubSequencer{})

		_, err := svc.SetPaymentStatus(context.Background(), storeID, order.ID, enums.PaymentStatusPaid)
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		repo := newStubOrdersRepo()
		order := seedServiceOrder(repo, storeID, enums.OrderStatusConfirmed, enums.PaymentStatusPaid)
		emitter := &stubOutbox{}
		svc := newOrdersService(t, repo, &memCarts{}, emitter, &stubSequencer{})

		_, err := svc.SetPaymentStatus(context.Background(), storeID, order.ID, enums.PaymentStatusPaid)
		require.NoError(t, err)
		assert.Empty(t, emitter.events)
	})
}
