package storeconfig

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmendezdev/partsmarket-backend/pkg/db"
	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
	pkgerrors "github.com/dmendezdev/partsmarket-backend/pkg/errors"
	"github.com/dmendezdev/partsmarket-backend/pkg/pagination"
)

// Service manages store tenants and their product overlays.
type Service interface {
	CreateStore(ctx context.Context, input CreateStoreInput) (*StoreDTO, error)
	GetStore(ctx context.Context, storeID uuid.UUID) (*StoreDTO, error)
	GetStoreBySlug(ctx context.Context, slug string) (*StoreDTO, error)

	UpsertConfig(ctx context.Context, storeID uuid.UUID, input ConfigInput) (*ConfigDTO, error)
	UpdateConfig(ctx context.Context, storeID uuid.UUID, sku string, input UpdateConfigInput) (*ConfigDTO, error)
	GetConfig(ctx context.Context, storeID uuid.UUID, sku string) (*ConfigDTO, error)
	ListConfigs(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*ConfigListResult, error)
	DeleteConfig(ctx context.Context, storeID uuid.UUID, sku string) error
}

// CreateStoreInput holds the validated payload to register a tenant.
type CreateStoreInput struct {
	Name         string
	Slug         string
	ContactEmail string
	Phone        *string
	Currency     enums.Currency
}

// ConfigInput holds the full overlay payload for create-or-replace.
type ConfigInput struct {
	ProductSKU      string
	IsActive        bool
	IsFeatured      bool
	CustomPrice     *decimal.Decimal
	CustomProfitPct *decimal.Decimal
	StockQuantity   int
	DisplayOrder    int
}

// UpdateConfigInput carries partial overlay changes plus the concurrency
// token the caller read. A stale token is rejected with CodeConflict.
type UpdateConfigInput struct {
	UpdatedAt       time.Time
	IsActive        *bool
	IsFeatured      *bool
	CustomPrice     *decimal.Decimal
	ClearPrice      bool
	CustomProfitPct *decimal.Decimal
	ClearProfitPct  bool
	StockQuantity   *int
	DisplayOrder    *int
}

type service struct {
	repo     Repository
	products productFinder
}

// NewService constructs a storeconfig service instance.
func NewService(repo Repository, products productFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("storeconfig repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	return &service{repo: repo, products: products}, nil
}

// CreateStore registers a tenant with a unique slug.
func (s *service) CreateStore(ctx context.Context, input CreateStoreInput) (*StoreDTO, error) {
	name := strings.TrimSpace(input.Name)
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if name == "" || slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and slug are required")
	}
	currency := input.Currency
	if currency == "" {
		currency = enums.DefaultCurrency
	}
	if !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}

	store := &models.Store{
		Name:         name,
		Slug:         slug,
		ContactEmail: strings.TrimSpace(input.ContactEmail),
		Phone:        input.Phone,
		Currency:     currency,
		IsActive:     true,
	}
	created, err := s.repo.CreateStore(ctx, store)
	if err != nil {
		if db.IsUniqueViolation(err, "ux_stores_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert store")
	}
	return NewStoreDTO(created), nil
}

// GetStore loads one tenant by id.
func (s *service) GetStore(ctx context.Context, storeID uuid.UUID) (*StoreDTO, error) {
	store, err := s.repo.FindStore(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return NewStoreDTO(store), nil
}

// GetStoreBySlug loads one tenant by its public slug.
func (s *service) GetStoreBySlug(ctx context.Context, slug string) (*StoreDTO, error) {
	store, err := s.repo.FindStoreBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return NewStoreDTO(store), nil
}

// UpsertConfig creates the overlay for (store, sku) or fully replaces it when
// it already exists.
func (s *service) UpsertConfig(ctx context.Context, storeID uuid.UUID, input ConfigInput) (*ConfigDTO, error) {
	sku := strings.TrimSpace(input.ProductSKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_sku is required")
	}
	if err := validateOverlay(input.CustomPrice, input.CustomProfitPct, input.StockQuantity); err != nil {
		return nil, err
	}
	if _, err := s.products.FindBySKU(ctx, sku); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	existing, err := s.repo.FindConfig(ctx, storeID, sku)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load config")
	}

	if existing == nil {
		cfg := &models.StoreProductConfig{
			StoreID:         storeID,
			ProductSKU:      sku,
			IsActive:        input.IsActive,
			IsFeatured:      input.IsFeatured,
			CustomPrice:     input.CustomPrice,
			CustomProfitPct: input.CustomProfitPct,
			StockQuantity:   input.StockQuantity,
			DisplayOrder:    input.DisplayOrder,
		}
		created, err := s.repo.CreateConfig(ctx, cfg)
		if err != nil {
			if db.IsUniqueViolation(err, "ux_store_configs_store_sku") {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "config already exists")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert config")
		}
		return NewConfigDTO(created), nil
	}

	existing.IsActive = input.IsActive
	existing.IsFeatured = input.IsFeatured
	existing.CustomPrice = input.CustomPrice
	existing.CustomProfitPct = input.CustomProfitPct
	existing.StockQuantity = input.StockQuantity
	existing.DisplayOrder = input.DisplayOrder

	updated, err := s.repo.UpdateConfig(ctx, existing)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "config changed concurrently")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update config")
	}
	return NewConfigDTO(updated), nil
}

// UpdateConfig applies partial changes guarded by the updated_at token.
func (s *service) UpdateConfig(ctx context.Context, storeID uuid.UUID, sku string, input UpdateConfigInput) (*ConfigDTO, error) {
	if input.UpdatedAt.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "updated_at token is required")
	}

	cfg, err := s.repo.FindConfig(ctx, storeID, strings.TrimSpace(sku))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "config not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load config")
	}
	if !cfg.UpdatedAt.Equal(input.UpdatedAt) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "config was modified by another request")
	}

	applyConfigUpdate(cfg, input)
	if err := validateOverlay(cfg.CustomPrice, cfg.CustomProfitPct, cfg.StockQuantity); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateConfig(ctx, cfg)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "config was modified by another request")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update config")
	}
	return NewConfigDTO(updated), nil
}

// GetConfig loads one overlay by store and SKU.
func (s *service) GetConfig(ctx context.Context, storeID uuid.UUID, sku string) (*ConfigDTO, error) {
	cfg, err := s.repo.FindConfig(ctx, storeID, strings.TrimSpace(sku))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "config not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load config")
	}
	return NewConfigDTO(cfg), nil
}

// ListConfigs returns one page of the store's overlays.
func (s *service) ListConfigs(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*ConfigListResult, error) {
	rows, next, err := s.repo.ListConfigs(ctx, storeID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list configs")
	}
	dtos := make([]ConfigDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewConfigDTO(&rows[i]))
	}
	return &ConfigListResult{Configs: dtos, NextCursor: next}, nil
}

// DeleteConfig removes the overlay, hiding the product from the storefront.
func (s *service) DeleteConfig(ctx context.Context, storeID uuid.UUID, sku string) error {
	if err := s.repo.DeleteConfig(ctx, storeID, strings.TrimSpace(sku)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "config not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete config")
	}
	return nil
}

func validateOverlay(customPrice, customProfitPct *decimal.Decimal, stock int) error {
	if customPrice != nil && customPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "custom_price must be non-negative")
	}
	if customProfitPct != nil && customProfitPct.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "custom_profit_pct must be non-negative")
	}
	if stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity must be non-negative")
	}
	return nil
}

func applyConfigUpdate(cfg *models.StoreProductConfig, input UpdateConfigInput) {
	if input.IsActive != nil {
		cfg.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		cfg.IsFeatured = *input.IsFeatured
	}
	if input.ClearPrice {
		cfg.CustomPrice = nil
	} else if input.CustomPrice != nil {
		cfg.CustomPrice = input.CustomPrice
	}
	if input.ClearProfitPct {
		cfg.CustomProfitPct = nil
	} else if input.CustomProfitPct != nil {
		cfg.CustomProfitPct = input.CustomProfitPct
	}
	if input.StockQuantity != nil {
		cfg.StockQuantity = *input.StockQuantity
	}
	if input.DisplayOrder != nil {
		cfg.DisplayOrder = *input.DisplayOrder
	}
}
