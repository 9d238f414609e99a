package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmendezdev/partsmarket-backend/api/responses"
	"github.com/dmendezdev/partsmarket-backend/internal/storeconfig"
	pkgerrors "github.com/dmendezdev/partsmarket-backend/pkg/errors"
	"github.com/dmendezdev/partsmarket-backend/pkg/logger"
)

type storeResolver interface {
	GetStore(ctx context.Context, storeID uuid.UUID) (*storeconfig.StoreDTO, error)
	GetStoreBySlug(ctx context.Context, slug string) (*storeconfig.StoreDTO, error)
}

// StoreContext resolves the {store} path segment (uuid or slug) to an active
// tenant and injects its id into the request context.
func StoreContext(stores storeResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(chi.URLParam(r, "store"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "store identifier required"))
				return
			}

			store, err := resolveStore(r.Context(), stores, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if !store.IsActive {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "store is not active"))
				return
			}

			ctx := WithStoreID(r.Context(), store.ID)
			if logg != nil {
				ctx = logg.WithStoreID(ctx, store.ID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveStore(ctx context.Context, stores storeResolver, raw string) (*storeconfig.StoreDTO, error) {
	if id, err := uuid.Parse(raw); err == nil {
		return stores.GetStore(ctx, id)
	}
	return stores.GetStoreBySlug(ctx, raw)
}
