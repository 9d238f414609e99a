package storeconfig

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	"github.com/dmendezdev/partsmarket-backend/pkg/pagination"
)

func setupConfigTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	stores := `
CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  contact_email TEXT NOT NULL,
  phone TEXT,
  currency TEXT NOT NULL DEFAULT 'MXN',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	configs := `
CREATE TABLE IF NOT EXISTS store_product_configs (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  product_sku TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  is_featured INTEGER NOT NULL DEFAULT 0,
  custom_price TEXT,
  custom_profit_pct TEXT,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  display_order INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (store_id, product_sku)
);`
	require.NoError(t, db.Exec(stores).Error)
	require.NoError(t, db.Exec(configs).Error)
	return db
}

func seedConfig(t *testing.T, db *gorm.DB, storeID uuid.UUID, created time.Time) *models.StoreProductConfig {
	t.Helper()

	cfg := &models.StoreProductConfig{
		ID:            uuid.New(),
		StoreID:       storeID,
		ProductSKU:    fmt.Sprintf("SKU-%s", uuid.NewString()[:8]),
		IsActive:      true,
		StockQuantity: 10,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	require.NoError(t, db.Create(cfg).Error)
	return cfg
}

func TestRepositoryStoreRoundTrip(t *testing.T) {
	db := setupConfigTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	slug := "refacciones-" + uuid.NewString()[:8]
	created, err := repo.CreateStore(ctx, &models.Store{
		ID:           uuid.New(),
		Name:         "Refacciones del Norte",
		Slug:         slug,
		ContactEmail: "ventas@example.com",
	})
	require.NoError(t, err)

	byID, err := repo.FindStore(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, slug, byID.Slug)

	bySlug, err := repo.FindStoreBySlug(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)

	_, err = repo.FindStore(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListConfigs_pagination(t *testing.T) {
	db := setupConfigTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)
	var seeded []*models.StoreProductConfig
	for i := 0; i < 3; i++ {
		seeded = append(seeded, seedConfig(t, db, storeID, base.Add(time.Duration(i)*time.Minute)))
	}
	seedConfig(t, db, uuid.New(), base) // other store, must not leak

	first, next, err := repo.ListConfigs(ctx, storeID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotEmpty(t, next)
	assert.Equal(t, seeded[2].ID, first[0].ID)

	second, last, err := repo.ListConfigs(ctx, storeID, pagination.Params{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Empty(t, last)
	assert.Equal(t, seeded[0].ID, second[0].ID)
}

func TestRepositoryUpdateConfig_staleToken(t *testing.T) {
	db := setupConfigTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	cfg := seedConfig(t, db, storeID, time.Now().UTC().Truncate(time.Second))

	price := decimal.NewFromInt(99)
	cfg.CustomPrice = &price
	updated, err := repo.UpdateConfig(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, updated.CustomPrice)
	assert.True(t, updated.CustomPrice.Equal(price))

	// replaying with the pre-update token must find zero rows
	_, err = repo.UpdateConfig(ctx, cfg)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryDeleteConfig(t *testing.T) {
	db := setupConfigTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	cfg := seedConfig(t, db, storeID, time.Now().UTC())

	require.NoError(t, repo.DeleteConfig(ctx, storeID, cfg.ProductSKU))
	assert.ErrorIs(t, repo.DeleteConfig(ctx, storeID, cfg.ProductSKU), gorm.ErrRecordNotFound)

	_, err := repo.FindConfig(ctx, storeID, cfg.ProductSKU)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
