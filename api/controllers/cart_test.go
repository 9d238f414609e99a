package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/dmendezdev/partsmarket-backend/api/middleware"
	cartsvc "github.com/dmendezdev/partsmarket-backend/internal/cart"
)

func TestCartItemUpsert(t *testing.T) {
	logg := testLogger()
	storeID := uuid.New()

	makeRequest := func(ctx context.Context, body string, stub *stubCartService) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/storefront/"+storeID.String()+"/cart/items", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		CartItemUpsert(stub, logg).ServeHTTP(rec, req)
		return rec
	}

	scoped := func() context.Context {
		ctx := middleware.WithStoreID(context.Background(), storeID)
		return middleware.WithSessionID(ctx, "sess-9")
	}

	t.Run("missing session", func(t *testing.T) {
		ctx := middleware.WithStoreID(context.Background(), storeID)
		rec := makeRequest(ctx, `{"product_sku":"BP-100","quantity":1}`, &stubCartService{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 when session missing, got %d", rec.Code)
		}
	})

	t.Run("unknown body field", func(t *testing.T) {
		rec := makeRequest(scoped(), `{"product_sku":"BP-100","quantity":1,"unit_price":"9.99"}`, &stubCartService{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
		}
	})

	t.Run("zero quantity", func(t *testing.T) {
		rec := makeRequest(scoped(), `{"product_sku":"BP-100","quantity":0}`, &stubCartService{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for zero quantity, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubCartService{}
		rec := makeRequest(scoped(), `{"product_sku":"BP-100","quantity":3}`, stub)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 on success, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.gotUpsert == nil {
			t.Fatalf("expected UpsertItem to be invoked")
		}
		if stub.gotUpsert.ProductSKU != "BP-100" || stub.gotUpsert.Quantity != 3 {
			t.Fatalf("unexpected input forwarded: %+v", stub.gotUpsert)
		}
		if stub.gotSession != "sess-9" {
			t.Fatalf("expected session forwarded, got %q", stub.gotSession)
		}
	})
}

type stubCartService struct {
	gotSession string
	gotUpsert  *cartsvc.UpsertItemInput
}

func (s *stubCartService) GetOrCreateCart(ctx context.Context, storeID uuid.UUID, sessionID string) (*cartsvc.CartDTO, error) {
	panic("unimplemented")
}

func (s *stubCartService) UpsertItem(ctx context.Context, storeID uuid.UUID, sessionID string, input cartsvc.UpsertItemInput) (*cartsvc.CartDTO, error) {
	s.gotSession = sessionID
	s.gotUpsert = &input
	return &cartsvc.CartDTO{ID: uuid.New(), StoreID: storeID, SessionID: sessionID}, nil
}

func (s *stubCartService) SetQuantity(ctx context.Context, storeID uuid.UUID, sessionID, sku string, quantity int) (*cartsvc.CartDTO, error) {
	panic("unimplemented")
}

func (s *stubCartService) ApplyDiscount(ctx context.Context, storeID uuid.UUID, sessionID, sku string, input cartsvc.DiscountInput) (*cartsvc.CartDTO, error) {
	panic("unimplemented")
}

func (s *stubCartService) RemoveItem(ctx context.Context, storeID uuid.UUID, sessionID, sku string) (*cartsvc.CartDTO, error) {
	panic("unimplemented")
}

func (s *stubCartService) Clear(ctx context.Context, storeID uuid.UUID, sessionID string) (*cartsvc.CartDTO, error) {
	panic("unimplemented")
}

func (s *stubCartService) SetCustomer(ctx context.Context, storeID uuid.UUID, sessionID string, input cartsvc.CustomerInput) (*cartsvc.CartDTO, error) {
	panic("unimplemented")
}
