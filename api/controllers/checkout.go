package controllers

import (
	"net/http"

	"github.com/dmendezdev/partsmarket-backend/api/middleware"
	"github.com/dmendezdev/partsmarket-backend/api/responses"
	"github.com/dmendezdev/partsmarket-backend/api/validators"
	ordersvc "github.com/dmendezdev/partsmarket-backend/internal/orders"
	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
	pkgerrors "github.com/dmendezdev/partsmarket-backend/pkg/errors"
	"github.com/dmendezdev/partsmarket-backend/pkg/logger"
)

// Checkout converts the session's active cart into an order.
func Checkout(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		storeID, ok := middleware.StoreIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing"))
			return
		}
		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session context missing"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Checkout(r.Context(), storeID, sessionID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

type checkoutRequest struct {
	Channel      string  `json:"channel"`
	Priority     *int    `json:"priority"`
	PONumber     *string `json:"po_number"`
	PaymentTerms *string `json:"payment_terms"`
}

func (r checkoutRequest) toInput() (ordersvc.CheckoutInput, error) {
	channel := enums.OrderChannelB2C
	if r.Channel != "" {
		parsed, err := enums.ParseOrderChannel(r.Channel)
		if err != nil {
			return ordersvc.CheckoutInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid channel")
		}
		channel = parsed
	}

	var priority *enums.Priority
	if r.Priority != nil {
		parsed, err := enums.ParsePriority(*r.Priority)
		if err != nil {
			return ordersvc.CheckoutInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority")
		}
		priority = &parsed
	}

	return ordersvc.CheckoutInput{
		Channel:      channel,
		Priority:     priority,
		PONumber:     r.PONumber,
		PaymentTerms: r.PaymentTerms,
	}, nil
}
