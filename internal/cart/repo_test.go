package cart

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
	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	carts := `
CREATE TABLE IF NOT EXISTS cart_records (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  session_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  customer_name TEXT,
  customer_email TEXT,
  customer_phone TEXT,
  delivery_address TEXT,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	items := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_sku TEXT NOT NULL,
  product_name TEXT NOT NULL,
  product_description TEXT,
  product_brand TEXT NOT NULL,
  product_image TEXT,
  unit_price TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  discount_pct TEXT NOT NULL DEFAULT '0',
  discount_amount TEXT NOT NULL DEFAULT '0',
  tax_rate TEXT NOT NULL,
  tax_amount TEXT NOT NULL,
  total_price TEXT NOT NULL,
  item_notes TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, product_sku)
);`
	require.NoError(t, db.Exec(carts).Error)
	require.NoError(t, db.Exec(items).Error)
	return db
}

func seedCart(t *testing.T, db *gorm.DB, storeID uuid.UUID, sessionID string) *models.CartRecord {
	t.Helper()

	cart := &models.CartRecord{
		ID:        uuid.New(),
		StoreID:   storeID,
		SessionID: sessionID,
		Status:    enums.CartStatusActive,
	}
	require.NoError(t, db.Omit("Items").Create(cart).Error)
	return cart
}

func seedItem(t *testing.T, db *gorm.DB, cartID uuid.UUID, qty int) *models.CartItem {
	t.Helper()

	unit := decimal.NewFromInt(120)
	item := &models.CartItem{
		ID:           uuid.New(),
		CartID:       cartID,
		ProductSKU:   fmt.Sprintf("SKU-%s", uuid.NewString()[:8]),
		ProductName:  "Oil Filter",
		ProductBrand: "Mann",
		UnitPrice:    unit,
		Quantity:     qty,
		TaxRate:      decimal.NewFromInt(16),
		TaxAmount:    unit.Mul(decimal.NewFromInt(int64(qty))).Mul(decimal.NewFromFloat(0.16)),
		TotalPrice:   unit.Mul(decimal.NewFromInt(int64(qty))),
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestRepositoryFindActiveCart(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	session := "sess-" + uuid.NewString()[:8]
	cart := seedCart(t, db, storeID, session)
	seedItem(t, db, cart.ID, 2)

	found, err := repo.FindActiveCart(ctx, storeID, session)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, found.ID)
	require.Len(t, found.Items, 1)

	// converted carts are invisible to the session
	require.NoError(t, repo.UpdateCartStatus(ctx, cart.ID, enums.CartStatusConverted))
	_, err = repo.FindActiveCart(ctx, storeID, session)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryUpdateCartStatus_missing(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)

	err := repo.UpdateCartStatus(context.Background(), uuid.New(), enums.CartStatusAbandoned)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryItemLifecycle(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cart := seedCart(t, db, uuid.New(), "sess-"+uuid.NewString()[:8])
	item := seedItem(t, db, cart.ID, 1)

	item.Quantity = 3
	require.NoError(t, repo.UpdateItem(ctx, item))

	found, err := repo.FindCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 3, found.Items[0].Quantity)

	require.NoError(t, repo.DeleteItem(ctx, cart.ID, item.ProductSKU))
	assert.ErrorIs(t, repo.DeleteItem(ctx, cart.ID, item.ProductSKU), gorm.ErrRecordNotFound)
}

func TestRepositoryDeleteItems(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cart := seedCart(t, db, uuid.New(), "sess-"+uuid.NewString()[:8])
	seedItem(t, db, cart.ID, 1)
	seedItem(t, db, cart.ID, 2)

	require.NoError(t, repo.DeleteItems(ctx, cart.ID))

	found, err := repo.FindCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, found.Items)
}

func TestRepositoryMarkAbandonedBefore(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	storeID := uuid.New()

	stale := seedCart(t, db, storeID, fmt.Sprintf("sess-%s", uuid.NewString()[:8]))
	fresh := seedCart(t, db, storeID, fmt.Sprintf("sess-%s", uuid.NewString()[:8]))
	converted := seedCart(t, db, storeID, fmt.Sprintf("sess-%s", uuid.NewString()[:8]))
	require.NoError(t, repo.UpdateCartStatus(ctx, converted.ID, enums.CartStatusConverted))

	tenDaysAgo := time.Now().UTC().AddDate(0, 0, -10)
	require.NoError(t, db.Model(&models.CartRecord{}).
		Where("id IN ?", []uuid.UUID{stale.ID, converted.ID}).
		UpdateColumn("updated_at", tenDaysAgo).Error)

	moved, err := repo.MarkAbandonedBefore(ctx, time.Now().UTC().AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved, "only stale active carts are swept")

	found, err := repo.FindCart(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CartStatusAbandoned, found.Status)

	found, err = repo.FindCart(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CartStatusActive, found.Status)
}
