package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	pkgerrors "github.com/dmendezdev/partsmarket-backend/pkg/errors"
)

type stubCatalogRepo struct {
	createProduct         func(ctx context.Context, product *models.Product) (*models.Product, error)
	findByID              func(ctx context.Context, id uuid.UUID) (*models.Product, error)
	findBySKU             func(ctx context.Context, sku string) (*models.Product, error)
	updateProduct         func(ctx context.Context, product *models.Product) (*models.Product, error)
	listStorefront        func(ctx context.Context, storeID uuid.UUID, query StorefrontQuery) ([]StorefrontRow, string, error)
	findStorefrontProduct func(ctx context.Context, storeID uuid.UUID, sku string) (*StorefrontRow, error)
	listFeatured          func(ctx context.Context, storeID uuid.UUID, limit int) ([]StorefrontRow, error)
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCatalogRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if s.createProduct != nil {
		return s.createProduct(ctx, product)
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return product, nil
}

func (s *stubCatalogRepo) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if s.updateProduct != nil {
		return s.updateProduct(ctx, product)
	}
	return product, nil
}

func (s *stubCatalogRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.findByID != nil {
		return s.findByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	if s.findBySKU != nil {
		return s.findBySKU(ctx, sku)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) FindBySKUs(ctx context.Context, skus []string) (map[string]models.Product, error) {
	return map[string]models.Product{}, nil
}

func (s *stubCatalogRepo) List(ctx context.Context, query ListQuery) ([]models.Product, string, error) {
	return nil, "", nil
}

func (s *stubCatalogRepo) ListStorefront(ctx context.Context, storeID uuid.UUID, query StorefrontQuery) ([]StorefrontRow, string, error) {
	if s.listStorefront != nil {
		return s.listStorefront(ctx, storeID, query)
	}
	return nil, "", nil
}

func (s *stubCatalogRepo) ListFeatured(ctx context.Context, storeID uuid.UUID, limit int) ([]StorefrontRow, error) {
	if s.listFeatured != nil {
		return s.listFeatured(ctx, storeID, limit)
	}
	return nil, nil
}

func (s *stubCatalogRepo) FindStorefrontProduct(ctx context.Context, storeID uuid.UUID, sku string) (*StorefrontRow, error) {
	if s.findStorefrontProduct != nil {
		return s.findStorefrontProduct(ctx, storeID, sku)
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc
}

func TestServiceCreateProduct_validation(t *testing.T) {
	svc := newTestService(t, &stubCatalogRepo{})

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:      "Brake Pad Set",
		BasePrice: decimal.NewFromInt(100),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.CreateProduct(context.Background(), CreateProductInput{
		SKU:       "BP-100",
		Name:      "Brake Pad Set",
		BasePrice: decimal.NewFromInt(-1),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceCreateProduct_trimsAndCreates(t *testing.T) {
	var created *models.Product
	repo := &stubCatalogRepo{
		createProduct: func(ctx context.Context, product *models.Product) (*models.Product, error) {
			product.ID = uuid.New()
			created = product
			return product, nil
		},
	}
	svc := newTestService(t, repo)

	dto, err := svc.CreateProduct(context.Background(), CreateProductInput{
		SKU:       "  BP-100  ",
		Name:      " Brake Pad Set ",
		Brand:     "Brembo",
		Category:  "brakes",
		BasePrice: decimal.NewFromInt(100),
		IsActive:  true,
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "BP-100", created.SKU)
	assert.Equal(t, "Brake Pad Set", created.Name)
	assert.Equal(t, "BP-100", dto.SKU)
	assert.True(t, dto.BasePrice.Equal(decimal.NewFromInt(100)))
}

func TestServiceUpdateProduct_notFound(t *testing.T) {
	svc := newTestService(t, &stubCatalogRepo{})

	_, err := svc.UpdateProduct(context.Background(), uuid.New(), UpdateProductInput{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestServiceUpdateProduct_partial(t *testing.T) {
	id := uuid.New()
	existing := &models.Product{
		ID:        id,
		SKU:       "BP-100",
		Name:      "Brake Pad Set",
		Brand:     "Brembo",
		Category:  "brakes",
		BasePrice: decimal.NewFromInt(100),
		IsActive:  true,
	}
	repo := &stubCatalogRepo{
		findByID: func(ctx context.Context, got uuid.UUID) (*models.Product, error) {
			require.Equal(t, id, got)
			return existing, nil
		},
	}
	svc := newTestService(t, repo)

	newPrice := decimal.NewFromInt(120)
	inactive := false
	dto, err := svc.UpdateProduct(context.Background(), id, UpdateProductInput{
		BasePrice: &newPrice,
		IsActive:  &inactive,
	})
	require.NoError(t, err)
	assert.True(t, dto.BasePrice.Equal(newPrice))
	assert.False(t, dto.IsActive)
	assert.Equal(t, "Brake Pad Set", dto.Name)
}

func TestServiceGetStorefrontProduct_effectivePrice(t *testing.T) {
	storeID := uuid.New()
	profit := decimal.NewFromInt(20)
	repo := &stubCatalogRepo{
		findStorefrontProduct: func(ctx context.Context, gotStore uuid.UUID, sku string) (*StorefrontRow, error) {
			require.Equal(t, storeID, gotStore)
			require.Equal(t, "BP-100", sku)
			return &StorefrontRow{
				Product: models.Product{SKU: "BP-100", Name: "Brake Pad Set", BasePrice: decimal.NewFromInt(100)},
				Config:  models.StoreProductConfig{StoreID: storeID, ProductSKU: "BP-100", CustomProfitPct: &profit, StockQuantity: 5},
			}, nil
		},
	}
	svc := newTestService(t, repo)

	dto, err := svc.GetStorefrontProduct(context.Background(), storeID, " BP-100 ")
	require.NoError(t, err)
	assert.True(t, dto.EffectivePrice.Equal(decimal.NewFromInt(120)), "got %s", dto.EffectivePrice)
	assert.Equal(t, 5, dto.StockQuantity)
}

func TestServiceGetStorefrontProduct_customPriceWins(t *testing.T) {
	storeID := uuid.New()
	custom := decimal.NewFromInt(95)
	profit := decimal.NewFromInt(50)
	repo := &stubCatalogRepo{
		findStorefrontProduct: func(ctx context.Context, _ uuid.UUID, _ string) (*StorefrontRow, error) {
			return &StorefrontRow{
				Product: models.Product{SKU: "BP-100", BasePrice: decimal.NewFromInt(100)},
				Config:  models.StoreProductConfig{CustomPrice: &custom, CustomProfitPct: &profit},
			}, nil
		},
	}
	svc := newTestService(t, repo)

	dto, err := svc.GetStorefrontProduct(context.Background(), storeID, "BP-100")
	require.NoError(t, err)
	assert.True(t, dto.EffectivePrice.Equal(custom))
}

func TestServiceGetStorefrontProduct_notFound(t *testing.T) {
	svc := newTestService(t, &stubCatalogRepo{})

	_, err := svc.GetStorefrontProduct(context.Background(), uuid.New(), "missing")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestServiceListStorefrontProducts_mapsRows(t *testing.T) {
	storeID := uuid.New()
	repo := &stubCatalogRepo{
		listStorefront: func(ctx context.Context, _ uuid.UUID, query StorefrontQuery) ([]StorefrontRow, string, error) {
			return []StorefrontRow{
				{
					Product: models.Product{SKU: "BP-100", Name: "Brake Pad Set", BasePrice: decimal.NewFromInt(100)},
					Config:  models.StoreProductConfig{ProductSKU: "BP-100", StockQuantity: 3, IsFeatured: true},
				},
			}, "next-cursor", nil
		},
	}
	svc := newTestService(t, repo)

	result, err := svc.ListStorefrontProducts(context.Background(), storeID, StorefrontQuery{})
	require.NoError(t, err)
	assert.Equal(t, "next-cursor", result.NextCursor)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "BP-100", result.Products[0].ProductSKU)
	assert.True(t, result.Products[0].EffectivePrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, result.Products[0].IsFeatured)
}
