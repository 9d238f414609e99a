package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmendezdev/partsmarket-backend/pkg/db"
	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	pkgerrors "github.com/dmendezdev/partsmarket-backend/pkg/errors"
	"github.com/dmendezdev/partsmarket-backend/pkg/pricing"
)

// Service exposes catalog ingest and the storefront read surface.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, sku string) (*ProductDTO, error)
	ListProducts(ctx context.Context, query ListQuery) (*ProductListResult, error)
	ListStorefrontProducts(ctx context.Context, storeID uuid.UUID, query StorefrontQuery) (*StorefrontListResult, error)
	ListFeaturedProducts(ctx context.Context, storeID uuid.UUID, limit int) ([]StorefrontProductDTO, error)
	GetStorefrontProduct(ctx context.Context, storeID uuid.UUID, sku string) (*StorefrontProductDTO, error)
}

// CreateProductInput holds the validated payload to create a catalog row.
type CreateProductInput struct {
	SKU           string
	Name          string
	Description   *string
	Brand         string
	Category      string
	ImageURL      *string
	BasePrice     decimal.Decimal
	BaseProfitPct *decimal.Decimal
	IsActive      bool
}

// UpdateProductInput holds optional mutation values for a catalog row.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	Brand         *string
	Category      *string
	ImageURL      *string
	BasePrice     *decimal.Decimal
	BaseProfitPct *decimal.Decimal
	IsActive      *bool
}

type service struct {
	repo Repository
}

// NewService constructs a catalog service instance.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// CreateProduct inserts a new catalog row after validating pricing fields.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if err := validateCatalogPricing(input.BasePrice, input.BaseProfitPct); err != nil {
		return nil, err
	}

	product := &models.Product{
		SKU:           sku,
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Brand:         strings.TrimSpace(input.Brand),
		Category:      strings.TrimSpace(input.Category),
		ImageURL:      input.ImageURL,
		BasePrice:     input.BasePrice,
		BaseProfitPct: input.BaseProfitPct,
		IsActive:      input.IsActive,
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "ux_products_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return NewProductDTO(created), nil
}

// UpdateProduct applies partial changes to an existing catalog row.
func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	applyUpdateToProduct(product, input)
	if err := validateCatalogPricing(product.BasePrice, product.BaseProfitPct); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return NewProductDTO(updated), nil
}

// GetProduct loads one catalog row by SKU.
func (s *service) GetProduct(ctx context.Context, sku string) (*ProductDTO, error) {
	product, err := s.repo.FindBySKU(ctx, strings.TrimSpace(sku))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return NewProductDTO(product), nil
}

// ListProducts returns a catalog page for browse/search.
func (s *service) ListProducts(ctx context.Context, query ListQuery) (*ProductListResult, error) {
	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewProductDTO(&rows[i]))
	}
	return &ProductListResult{Products: dtos, NextCursor: next}, nil
}

// ListStorefrontProducts returns the store's sellable products with their
// effective prices resolved.
func (s *service) ListStorefrontProducts(ctx context.Context, storeID uuid.UUID, query StorefrontQuery) (*StorefrontListResult, error) {
	rows, next, err := s.repo.ListStorefront(ctx, storeID, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list storefront products")
	}
	return &StorefrontListResult{Products: toStorefrontDTOs(rows), NextCursor: next}, nil
}

// ListFeaturedProducts returns the store's featured rail.
func (s *service) ListFeaturedProducts(ctx context.Context, storeID uuid.UUID, limit int) ([]StorefrontProductDTO, error) {
	rows, err := s.repo.ListFeatured(ctx, storeID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list featured products")
	}
	return toStorefrontDTOs(rows), nil
}

// GetStorefrontProduct loads one sellable product for the store.
func (s *service) GetStorefrontProduct(ctx context.Context, storeID uuid.UUID, sku string) (*StorefrontProductDTO, error) {
	row, err := s.repo.FindStorefrontProduct(ctx, storeID, strings.TrimSpace(sku))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not available in store")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load storefront product")
	}
	dto := newStorefrontDTO(*row)
	return &dto, nil
}

func toStorefrontDTOs(rows []StorefrontRow) []StorefrontProductDTO {
	dtos := make([]StorefrontProductDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, newStorefrontDTO(row))
	}
	return dtos
}

func newStorefrontDTO(row StorefrontRow) StorefrontProductDTO {
	overlay := &pricing.Overlay{
		CustomPrice:     row.Config.CustomPrice,
		CustomProfitPct: row.Config.CustomProfitPct,
	}
	return StorefrontProductDTO{
		ProductSKU:     row.Product.SKU,
		Name:           row.Product.Name,
		Description:    row.Product.Description,
		Brand:          row.Product.Brand,
		Category:       row.Product.Category,
		ImageURL:       row.Product.ImageURL,
		EffectivePrice: pricing.EffectivePrice(row.Product.BasePrice, overlay),
		StockQuantity:  row.Config.StockQuantity,
		IsFeatured:     row.Config.IsFeatured,
		DisplayOrder:   row.Config.DisplayOrder,
	}
}

func validateCatalogPricing(basePrice decimal.Decimal, baseProfitPct *decimal.Decimal) error {
	if basePrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "base_price must be non-negative")
	}
	if baseProfitPct != nil && baseProfitPct.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "base_profit_pct must be non-negative")
	}
	return nil
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Brand != nil {
		product.Brand = strings.TrimSpace(*input.Brand)
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.BasePrice != nil {
		product.BasePrice = *input.BasePrice
	}
	if input.BaseProfitPct != nil {
		product.BaseProfitPct = input.BaseProfitPct
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
}
