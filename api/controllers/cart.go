package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmendezdev/partsmarket-backend/api/middleware"
	"github.com/dmendezdev/partsmarket-backend/api/responses"
	"github.com/dmendezdev/partsmarket-backend/api/validators"
	cartsvc "github.com/dmendezdev/partsmarket-backend/internal/cart"
	pkgerrors "github.com/dmendezdev/partsmarket-backend/pkg/errors"
	"github.com/dmendezdev/partsmarket-backend/pkg/logger"
	"github.com/dmendezdev/partsmarket-backend/pkg/types"
)

// CartGet returns the session's active cart, creating one when none exists.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := cartScope(r, svc, logg, w)
		if !ok {
			return
		}

		cart, err := svc.GetOrCreateCart(r.Context(), scope.storeID, scope.sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// CartItemUpsert adds a product to the cart, merging quantities on re-add.
func CartItemUpsert(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := cartScope(r, svc, logg, w)
		if !ok {
			return
		}

		var payload upsertItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.UpsertItem(r.Context(), scope.storeID, scope.sessionID, cartsvc.UpsertItemInput{
			ProductSKU: payload.ProductSKU,
			Quantity:   payload.Quantity,
			ItemNotes:  payload.ItemNotes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// CartItemQuantity sets the absolute quantity of one line; zero removes it.
func CartItemQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := cartScope(r, svc, logg, w)
		if !ok {
			return
		}
		sku, ok := cartSKU(r, logg, w)
		if !ok {
			return
		}

		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.SetQuantity(r.Context(), scope.storeID, scope.sessionID, sku, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// CartItemDiscount applies a percentage or fixed discount to one line.
func CartItemDiscount(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := cartScope(r, svc, logg, w)
		if !ok {
			return
		}
		sku, ok := cartSKU(r, logg, w)
		if !ok {
			return
		}

		var payload discountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.ApplyDiscount(r.Context(), scope.storeID, scope.sessionID, sku, cartsvc.DiscountInput{
			Pct:    payload.Pct,
			Amount: payload.Amount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// CartItemRemove deletes one line from the cart.
func CartItemRemove(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := cartScope(r, svc, logg, w)
		if !ok {
			return
		}
		sku, ok := cartSKU(r, logg, w)
		if !ok {
			return
		}

		cart, err := svc.RemoveItem(r.Context(), scope.storeID, scope.sessionID, sku)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// CartClear empties the cart while keeping it active.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := cartScope(r, svc, logg, w)
		if !ok {
			return
		}

		cart, err := svc.Clear(r.Context(), scope.storeID, scope.sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// CartCustomer records the checkout contact and delivery snapshot.
func CartCustomer(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := cartScope(r, svc, logg, w)
		if !ok {
			return
		}

		var payload customerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.SetCustomer(r.Context(), scope.storeID, scope.sessionID, cartsvc.CustomerInput{
			Name:            payload.Name,
			Email:           payload.Email,
			Phone:           payload.Phone,
			DeliveryAddress: payload.DeliveryAddress,
			Notes:           payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

type requestScope struct {
	storeID   uuid.UUID
	sessionID string
}

func cartScope(r *http.Request, svc cartsvc.Service, logg *logger.Logger, w http.ResponseWriter) (requestScope, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
		return requestScope{}, false
	}
	storeID, ok := middleware.StoreIDFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing"))
		return requestScope{}, false
	}
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session context missing"))
		return requestScope{}, false
	}
	return requestScope{storeID: storeID, sessionID: sessionID}, true
}

func cartSKU(r *http.Request, logg *logger.Logger, w http.ResponseWriter) (string, bool) {
	sku := strings.TrimSpace(chi.URLParam(r, "sku"))
	if sku == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sku required"))
		return "", false
	}
	return sku, true
}

type upsertItemRequest struct {
	ProductSKU string  `json:"product_sku" validate:"required"`
	Quantity   int     `json:"quantity" validate:"required,min=1"`
	ItemNotes  *string `json:"item_notes"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

type discountRequest struct {
	Pct    *decimal.Decimal `json:"pct"`
	Amount *decimal.Decimal `json:"amount"`
}

type customerRequest struct {
	Name            *string        `json:"name"`
	Email           *string        `json:"email"`
	Phone           *string        `json:"phone"`
	DeliveryAddress *types.Address `json:"delivery_address,omitempty"`
	Notes           *string        `json:"notes"`
}
