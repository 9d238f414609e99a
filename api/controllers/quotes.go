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
	quotesvc "github.com/dmendezdev/partsmarket-backend/internal/quotes"
	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
	pkgerrors "github.com/dmendezdev/partsmarket-backend/pkg/errors"
	"github.com/dmendezdev/partsmarket-backend/pkg/logger"
	"github.com/dmendezdev/partsmarket-backend/pkg/pagination"
)

// QuoteCreate builds a draft quote priced from the store's current catalog.
func QuoteCreate(svc quotesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotes service unavailable"))
			return
		}

		storeID, err := parseStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload buildQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.BuildQuote(r.Context(), storeID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, quote)
	}
}

// QuoteList returns one page of a store's quotes, newest first.
func QuoteList(svc quotesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotes service unavailable"))
			return
		}

		storeID, err := parseStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := quotesvc.ListQuery{
			Pagination: pagination.Params{Limit: limit, Cursor: r.URL.Query().Get("cursor")},
		}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, parseErr := enums.ParseQuoteStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter"))
				return
			}
			query.Status = &status
		}

		result, err := svc.ListQuotes(r.Context(), storeID, query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// QuoteGetByNumber resolves a quote by its customer-facing number inside
// the storefront's store context.
func QuoteGetByNumber(svc quotesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotes service unavailable"))
			return
		}

		storeID, ok := middleware.StoreIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing"))
			return
		}

		number := strings.TrimSpace(chi.URLParam(r, "number"))
		if number == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "quote number required"))
			return
		}

		quote, err := svc.GetQuoteByNumber(r.Context(), storeID, number)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

// QuoteGet returns one quote by id.
func QuoteGet(svc quotesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotes service unavailable"))
			return
		}

		storeID, quoteID, err := parseQuoteScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.GetQuote(r.Context(), storeID, quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

// QuoteSend marks a draft quote as delivered to the client.
func QuoteSend(svc quotesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return quoteTransition(svc, logg, func(r *http.Request, storeID, quoteID uuid.UUID) (*quotesvc.QuoteDTO, error) {
		return svc.Send(r.Context(), storeID, quoteID)
	})
}

// QuoteApprove records the client's acceptance of a sent quote.
func QuoteApprove(svc quotesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return quoteTransition(svc, logg, func(r *http.Request, storeID, quoteID uuid.UUID) (*quotesvc.QuoteDTO, error) {
		return svc.Approve(r.Context(), storeID, quoteID)
	})
}

// QuoteReject records the client's refusal of a sent quote.
func QuoteReject(svc quotesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return quoteTransition(svc, logg, func(r *http.Request, storeID, quoteID uuid.UUID) (*quotesvc.QuoteDTO, error) {
		return svc.Reject(r.Context(), storeID, quoteID)
	})
}

func quoteTransition(svc quotesvc.Service, logg *logger.Logger, apply func(*http.Request, uuid.UUID, uuid.UUID) (*quotesvc.QuoteDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotes service unavailable"))
			return
		}

		storeID, quoteID, err := parseQuoteScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := apply(r, storeID, quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

func parseQuoteScope(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	storeID, err := parseStoreID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	quoteID, err := uuid.Parse(chi.URLParam(r, "quoteID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quote id")
	}
	return storeID, quoteID, nil
}

type buildQuoteRequest struct {
	ClientName   string             `json:"client_name" validate:"required"`
	ClientEmail  string             `json:"client_email" validate:"required,email"`
	ClientPhone  *string            `json:"client_phone"`
	CompanyName  *string            `json:"company_name"`
	CompanyTaxID *string            `json:"company_tax_id"`
	Notes        *string            `json:"notes"`
	Items        []quoteItemPayload `json:"items" validate:"required,min=1,dive"`
}

type quoteItemPayload struct {
	SKU         string           `json:"sku" validate:"required"`
	Quantity    int              `json:"quantity" validate:"required,min=1"`
	DiscountPct *decimal.Decimal `json:"discount_pct"`
	ItemNotes   *string          `json:"item_notes"`
}

func (r buildQuoteRequest) toInput() quotesvc.BuildQuoteInput {
	items := make([]quotesvc.QuoteItemInput, len(r.Items))
	for i, item := range r.Items {
		items[i] = quotesvc.QuoteItemInput{
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			DiscountPct: item.DiscountPct,
			ItemNotes:   item.ItemNotes,
		}
	}
	return quotesvc.BuildQuoteInput{
		ClientName:   r.ClientName,
		ClientEmail:  r.ClientEmail,
		ClientPhone:  r.ClientPhone,
		CompanyName:  r.CompanyName,
		CompanyTaxID: r.CompanyTaxID,
		Notes:        r.Notes,
		Items:        items,
	}
}
