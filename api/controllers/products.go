package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmendezdev/partsmarket-backend/api/responses"
	"github.com/dmendezdev/partsmarket-backend/api/validators"
	"github.com/dmendezdev/partsmarket-backend/internal/catalog"
	pkgerrors "github.com/dmendezdev/partsmarket-backend/pkg/errors"
	"github.com/dmendezdev/partsmarket-backend/pkg/logger"
	"github.com/dmendezdev/partsmarket-backend/pkg/pagination"
)

// ProductCreate inserts a shared catalog product.
func ProductCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductUpdate applies partial changes to a catalog product.
func ProductUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ProductGet returns one catalog product by SKU.
func ProductGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sku := strings.TrimSpace(chi.URLParam(r, "sku"))
		if sku == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sku required"))
			return
		}

		product, err := svc.GetProduct(r.Context(), sku)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ProductList returns a catalog page with optional filters.
func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		activeOnly, err := validators.ParseQueryBool(r, "active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := catalog.ListQuery{
			Pagination: pagination.Params{Limit: limit, Cursor: r.URL.Query().Get("cursor")},
			Category:   validators.SanitizeString(r.URL.Query().Get("category"), 120),
			Brand:      validators.SanitizeString(r.URL.Query().Get("brand"), 120),
			Search:     validators.SanitizeString(r.URL.Query().Get("q"), 200),
			ActiveOnly: activeOnly != nil && *activeOnly,
		}

		result, err := svc.ListProducts(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type createProductRequest struct {
	SKU           string           `json:"sku" validate:"required"`
	Name          string           `json:"name" validate:"required"`
	Description   *string          `json:"description"`
	Brand         string           `json:"brand" validate:"required"`
	Category      string           `json:"category" validate:"required"`
	ImageURL      *string          `json:"image_url"`
	BasePrice     decimal.Decimal  `json:"base_price" validate:"required"`
	BaseProfitPct *decimal.Decimal `json:"base_profit_pct"`
	IsActive      *bool            `json:"is_active"`
}

func (r createProductRequest) toInput() catalog.CreateProductInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return catalog.CreateProductInput{
		SKU:           r.SKU,
		Name:          r.Name,
		Description:   r.Description,
		Brand:         r.Brand,
		Category:      r.Category,
		ImageURL:      r.ImageURL,
		BasePrice:     r.BasePrice,
		BaseProfitPct: r.BaseProfitPct,
		IsActive:      active,
	}
}

type updateProductRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Brand         *string          `json:"brand"`
	Category      *string          `json:"category"`
	ImageURL      *string          `json:"image_url"`
	BasePrice     *decimal.Decimal `json:"base_price"`
	BaseProfitPct *decimal.Decimal `json:"base_profit_pct"`
	IsActive      *bool            `json:"is_active"`
}

func (r updateProductRequest) toInput() catalog.UpdateProductInput {
	return catalog.UpdateProductInput{
		Name:          r.Name,
		Description:   r.Description,
		Brand:         r.Brand,
		Category:      r.Category,
		ImageURL:      r.ImageURL,
		BasePrice:     r.BasePrice,
		BaseProfitPct: r.BaseProfitPct,
		IsActive:      r.IsActive,
	}
}
