package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmendezdev/partsmarket-backend/api/responses"
	"github.com/dmendezdev/partsmarket-backend/api/validators"
	"github.com/dmendezdev/partsmarket-backend/internal/storeconfig"
	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
	pkgerrors "github.com/dmendezdev/partsmarket-backend/pkg/errors"
	"github.com/dmendezdev/partsmarket-backend/pkg/logger"
	"github.com/dmendezdev/partsmarket-backend/pkg/pagination"
)

// StoreCreate provisions a new tenant.
func StoreCreate(svc storeconfig.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		var payload createStoreRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.CreateStore(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, store)
	}
}

// StoreGet returns one tenant by id.
func StoreGet(svc storeconfig.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		storeID, err := parseStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.GetStore(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, store)
	}
}

// ConfigUpsert creates or replaces one product overlay for a store.
func ConfigUpsert(svc storeconfig.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		storeID, err := parseStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload configRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := svc.UpsertConfig(r.Context(), storeID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cfg)
	}
}

// ConfigUpdate applies partial overlay changes guarded by the updated_at
// token the caller last read.
func ConfigUpdate(svc storeconfig.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		storeID, err := parseStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sku := strings.TrimSpace(chi.URLParam(r, "sku"))
		if sku == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sku required"))
			return
		}

		var payload updateConfigRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := svc.UpdateConfig(r.Context(), storeID, sku, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cfg)
	}
}

// ConfigGet returns one product overlay.
func ConfigGet(svc storeconfig.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		storeID, err := parseStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sku := strings.TrimSpace(chi.URLParam(r, "sku"))
		if sku == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sku required"))
			return
		}

		cfg, err := svc.GetConfig(r.Context(), storeID, sku)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cfg)
	}
}

// ConfigList returns one page of a store's overlays.
func ConfigList(svc storeconfig.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
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

		result, err := svc.ListConfigs(r.Context(), storeID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ConfigDelete removes one product overlay from a store.
func ConfigDelete(svc storeconfig.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		storeID, err := parseStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sku := strings.TrimSpace(chi.URLParam(r, "sku"))
		if sku == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sku required"))
			return
		}

		if err := svc.DeleteConfig(r.Context(), storeID, sku); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func parseStoreID(r *http.Request) (uuid.UUID, error) {
	storeID, err := uuid.Parse(chi.URLParam(r, "storeID"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id")
	}
	return storeID, nil
}

type createStoreRequest struct {
	Name         string  `json:"name" validate:"required"`
	Slug         string  `json:"slug" validate:"required"`
	ContactEmail string  `json:"contact_email" validate:"required,email"`
	Phone        *string `json:"phone"`
	Currency     string  `json:"currency"`
}

func (r createStoreRequest) toInput() (storeconfig.CreateStoreInput, error) {
	currency := enums.CurrencyMXN
	if strings.TrimSpace(r.Currency) != "" {
		parsed, err := enums.ParseCurrency(r.Currency)
		if err != nil {
			return storeconfig.CreateStoreInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency")
		}
		currency = parsed
	}
	return storeconfig.CreateStoreInput{
		Name:         r.Name,
		Slug:         r.Slug,
		ContactEmail: r.ContactEmail,
		Phone:        r.Phone,
		Currency:     currency,
	}, nil
}

type configRequest struct {
	ProductSKU      string           `json:"product_sku" validate:"required"`
	IsActive        bool             `json:"is_active"`
	IsFeatured      bool             `json:"is_featured"`
	CustomPrice     *decimal.Decimal `json:"custom_price"`
	CustomProfitPct *decimal.Decimal `json:"custom_profit_pct"`
	StockQuantity   int              `json:"stock_quantity" validate:"gte=0"`
	DisplayOrder    int              `json:"display_order"`
}

func (r configRequest) toInput() storeconfig.ConfigInput {
	return storeconfig.ConfigInput{
		ProductSKU:      r.ProductSKU,
		IsActive:        r.IsActive,
		IsFeatured:      r.IsFeatured,
		CustomPrice:     r.CustomPrice,
		CustomProfitPct: r.CustomProfitPct,
		StockQuantity:   r.StockQuantity,
		DisplayOrder:    r.DisplayOrder,
	}
}

type updateConfigRequest struct {
	UpdatedAt       time.Time        `json:"updated_at" validate:"required"`
	IsActive        *bool            `json:"is_active"`
	IsFeatured      *bool            `json:"is_featured"`
	CustomPrice     *decimal.Decimal `json:"custom_price"`
	ClearPrice      bool             `json:"clear_price"`
	CustomProfitPct *decimal.Decimal `json:"custom_profit_pct"`
	ClearProfitPct  bool             `json:"clear_profit_pct"`
	StockQuantity   *int             `json:"stock_quantity"`
	DisplayOrder    *int             `json:"display_order"`
}

func (r updateConfigRequest) toInput() storeconfig.UpdateConfigInput {
	return storeconfig.UpdateConfigInput{
		UpdatedAt:       r.UpdatedAt,
		IsActive:        r.IsActive,
		IsFeatured:      r.IsFeatured,
		CustomPrice:     r.CustomPrice,
		ClearPrice:      r.ClearPrice,
		CustomProfitPct: r.CustomProfitPct,
		ClearProfitPct:  r.ClearProfitPct,
		StockQuantity:   r.StockQuantity,
		DisplayOrder:    r.DisplayOrder,
	}
}
