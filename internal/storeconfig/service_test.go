package storeconfig

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	pkgerrors "github.com/dmendezdev/partsmarket-backend/pkg/errors"
	"github.com/dmendezdev/partsmarket-backend/pkg/pagination"
)

type stubConfigRepo struct {
	createStore  func(ctx context.Context, store *models.Store) (*models.Store, error)
	findConfig   func(ctx context.Context, storeID uuid.UUID, sku string) (*models.StoreProductConfig, error)
	createConfig func(ctx context.Context, cfg *models.StoreProductConfig) (*models.StoreProductConfig, error)
	updateConfig func(ctx context.Context, cfg *models.StoreProductConfig) (*models.StoreProductConfig, error)
	deleteConfig func(ctx context.Context, storeID uuid.UUID, sku string) error
}

func (s *stubConfigRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubConfigRepo) CreateStore(ctx context.Context, store *models.Store) (*models.Store, error) {
	if s.createStore != nil {
		return s.createStore(ctx, store)
	}
	if store.ID == uuid.Nil {
		store.ID = uuid.New()
	}
	return store, nil
}

func (s *stubConfigRepo) FindStore(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubConfigRepo) FindStoreBySlug(ctx context.Context, slug string) (*models.Store, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubConfigRepo) CreateConfig(ctx context.Context, cfg *models.StoreProductConfig) (*models.StoreProductConfig, error) {
	if s.createConfig != nil {
		return s.createConfig(ctx, cfg)
	}
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	return cfg, nil
}

func (s *stubConfigRepo) FindConfig(ctx context.Context, storeID uuid.UUID, sku string) (*models.StoreProductConfig, error) {
	if s.findConfig != nil {
		return s.findConfig(ctx, storeID, sku)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubConfigRepo) ListConfigs(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.StoreProductConfig, string, error) {
	return nil, "", nil
}

func (s *stubConfigRepo) UpdateConfig(ctx context.Context, cfg *models.StoreProductConfig) (*models.StoreProductConfig, error) {
	if s.updateConfig != nil {
		return s.updateConfig(ctx, cfg)
	}
	return cfg, nil
}

func (s *stubConfigRepo) DeleteConfig(ctx context.Context, storeID uuid.UUID, sku string) error {
	if s.deleteConfig != nil {
		return s.deleteConfig(ctx, storeID, sku)
	}
	return nil
}

type stubProductFinder struct {
	products map[string]*models.Product
}

func (s *stubProductFinder) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	if p, ok := s.products[sku]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newConfigService(t *testing.T, repo Repository, products productFinder) Service {
	t.Helper()
	if products == nil {
		products = &stubProductFinder{products: map[string]*models.Product{}}
	}
	svc, err := NewService(repo, products)
	require.NoError(t, err)
	return svc
}

func knownProducts(skus ...string) *stubProductFinder {
	finder := &stubProductFinder{products: map[string]*models.Product{}}
	for _, sku := range skus {
		finder.products[sku] = &models.Product{ID: uuid.New(), SKU: sku, IsActive: true}
	}
	return finder
}

func TestServiceCreateStore_validation(t *testing.T) {
	svc := newConfigService(t, &stubConfigRepo{}, nil)

	_, err := svc.CreateStore(context.Background(), CreateStoreInput{Name: "  ", Slug: "shop"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.CreateStore(context.Background(), CreateStoreInput{Name: "Shop", Slug: "shop", Currency: "EUR"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceCreateStore_defaultsCurrency(t *testing.T) {
	var created *models.Store
	repo := &stubConfigRepo{
		createStore: func(ctx context.Context, store *models.Store) (*models.Store, error) {
			store.ID = uuid.New()
			created = store
			return store, nil
		},
	}
	svc := newConfigService(t, repo, nil)

	dto, err := svc.CreateStore(context.Background(), CreateStoreInput{
		Name:         "Refacciones del Norte",
		Slug:         " Refacciones-Norte ",
		ContactEmail: "ventas@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "refacciones-norte", created.Slug)
	assert.Equal(t, "MXN", dto.Currency.String())
}

func TestServiceUpsertConfig_unknownSKU(t *testing.T) {
	svc := newConfigService(t, &stubConfigRepo{}, knownProducts())

	_, err := svc.UpsertConfig(context.Background(), uuid.New(), ConfigInput{ProductSKU: "NOPE-1"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestServiceUpsertConfig_createsThenReplaces(t *testing.T) {
	storeID := uuid.New()
	var stored *models.StoreProductConfig
	repo := &stubConfigRepo{
		findConfig: func(ctx context.Context, _ uuid.UUID, _ string) (*models.StoreProductConfig, error) {
			if stored == nil {
				return nil, gorm.ErrRecordNotFound
			}
			cp := *stored
			return &cp, nil
		},
		createConfig: func(ctx context.Context, cfg *models.StoreProductConfig) (*models.StoreProductConfig, error) {
			cfg.ID = uuid.New()
			stored = cfg
			return cfg, nil
		},
		updateConfig: func(ctx context.Context, cfg *models.StoreProductConfig) (*models.StoreProductConfig, error) {
			stored = cfg
			return cfg, nil
		},
	}
	svc := newConfigService(t, repo, knownProducts("BP-100"))

	price := decimal.NewFromInt(150)
	first, err := svc.UpsertConfig(context.Background(), storeID, ConfigInput{
		ProductSKU:    "BP-100",
		IsActive:      true,
		CustomPrice:   &price,
		StockQuantity: 5,
	})
	require.NoError(t, err)
	require.NotNil(t, first.CustomPrice)

	second, err := svc.UpsertConfig(context.Background(), storeID, ConfigInput{
		ProductSKU:    "BP-100",
		IsActive:      true,
		StockQuantity: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Nil(t, second.CustomPrice)
	assert.Equal(t, 8, second.StockQuantity)
}

func TestServiceUpdateConfig_staleToken(t *testing.T) {
	storeID := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)
	repo := &stubConfigRepo{
		findConfig: func(ctx context.Context, _ uuid.UUID, _ string) (*models.StoreProductConfig, error) {
			return &models.StoreProductConfig{
				ID:         uuid.New(),
				StoreID:    storeID,
				ProductSKU: "BP-100",
				UpdatedAt:  now,
			}, nil
		},
	}
	svc := newConfigService(t, repo, knownProducts("BP-100"))

	_, err := svc.UpdateConfig(context.Background(), storeID, "BP-100", UpdateConfigInput{
		UpdatedAt: now.Add(-time.Minute),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestServiceUpdateConfig_appliesPartial(t *testing.T) {
	storeID := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)
	profit := decimal.NewFromInt(25)
	existingPrice := decimal.NewFromInt(150)
	repo := &stubConfigRepo{
		findConfig: func(ctx context.Context, _ uuid.UUID, _ string) (*models.StoreProductConfig, error) {
			return &models.StoreProductConfig{
				ID:            uuid.New(),
				StoreID:       storeID,
				ProductSKU:    "BP-100",
				IsActive:      true,
				CustomPrice:   &existingPrice,
				StockQuantity: 5,
				UpdatedAt:     now,
			}, nil
		},
	}
	svc := newConfigService(t, repo, knownProducts("BP-100"))

	dto, err := svc.UpdateConfig(context.Background(), storeID, "BP-100", UpdateConfigInput{
		UpdatedAt:       now,
		ClearPrice:      true,
		CustomProfitPct: &profit,
	})
	require.NoError(t, err)
	assert.Nil(t, dto.CustomPrice)
	require.NotNil(t, dto.CustomProfitPct)
	assert.True(t, dto.CustomProfitPct.Equal(profit))
	assert.Equal(t, 5, dto.StockQuantity)
}

func TestServiceUpdateConfig_requiresToken(t *testing.T) {
	svc := newConfigService(t, &stubConfigRepo{}, knownProducts("BP-100"))

	_, err := svc.UpdateConfig(context.Background(), uuid.New(), "BP-100", UpdateConfigInput{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceDeleteConfig_notFound(t *testing.T) {
	repo := &stubConfigRepo{
		deleteConfig: func(ctx context.Context, storeID uuid.UUID, sku string) error {
			return gorm.ErrRecordNotFound
		},
	}
	svc := newConfigService(t, repo, nil)

	err := svc.DeleteConfig(context.Background(), uuid.New(), "BP-100")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
