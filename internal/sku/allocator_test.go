package sku

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/resaleops/stockroom/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAllocator(t *testing.T) (*Allocator, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Exec(`CREATE TABLE items (sku TEXT PRIMARY KEY)`).Error)

	holder, err := catalog.NewStaticHolder(catalog.DefaultCatalog())
	require.NoError(t, err)
	return NewAllocator(holder), db
}

func insertSKU(t *testing.T, db *gorm.DB, sku string) {
	t.Helper()
	require.NoError(t, db.Exec(`INSERT INTO items (sku) VALUES (?)`, sku).Error)
}

func TestAllocateSequence(t *testing.T) {
	allocator, db := setupAllocator(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		sku, err := allocator.Allocate(ctx, db, "nike")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("NIK%03d", i), sku)
		insertSKU(t, db, sku)
	}

	sku, err := allocator.Allocate(ctx, db, "adidas")
	require.NoError(t, err)
	assert.Equal(t, "ADI001", sku)
}

func TestAllocateNeverReusesCounters(t *testing.T) {
	allocator, db := setupAllocator(t)
	ctx := context.Background()

	insertSKU(t, db, "NIK001")
	insertSKU(t, db, "NIK005")

	sku, err := allocator.Allocate(ctx, db, "nike")
	require.NoError(t, err)
	assert.Equal(t, "NIK006", sku)
}

func TestAllocateCountsVariantBases(t *testing.T) {
	allocator, db := setupAllocator(t)
	ctx := context.Background()

	insertSKU(t, db, "NIK002")
	insertSKU(t, db, "NIK002-2")

	sku, err := allocator.Allocate(ctx, db, "nike")
	require.NoError(t, err)
	assert.Equal(t, "NIK003", sku)
}

func TestAllocateUnknownBrand(t *testing.T) {
	allocator, db := setupAllocator(t)

	_, err := allocator.Allocate(context.Background(), db, "asics")
	var unknown *UnknownBrandError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "asics", unknown.Brand)
	assert.Len(t, unknown.SuggestedPrefix, 3)
}

func TestAllocateExhaustedPrefix(t *testing.T) {
	allocator, db := setupAllocator(t)

	insertSKU(t, db, "NIK999")
	_, err := allocator.Allocate(context.Background(), db, "nike")
	assert.ErrorIs(t, err, ErrPrefixExhausted)
}

func TestNextVariantSKU(t *testing.T) {
	allocator, db := setupAllocator(t)
	ctx := context.Background()

	insertSKU(t, db, "NIK001")

	sku, err := allocator.NextVariantSKU(ctx, db, "NIK001")
	require.NoError(t, err)
	assert.Equal(t, "NIK001-2", sku)
	insertSKU(t, db, sku)

	sku, err = allocator.NextVariantSKU(ctx, db, "NIK001")
	require.NoError(t, err)
	assert.Equal(t, "NIK001-3", sku)

	// variants can be minted from a variant SKU too
	sku, err = allocator.NextVariantSKU(ctx, db, "NIK001-2")
	require.NoError(t, err)
	assert.Equal(t, "NIK001-3", sku)
}

func TestSplit(t *testing.T) {
	base, variant, ok := Split("NIK001")
	require.True(t, ok)
	assert.Equal(t, "NIK001", base)
	assert.Equal(t, 1, variant)

	base, variant, ok = Split("nik001-4")
	require.True(t, ok)
	assert.Equal(t, "NIK001", base)
	assert.Equal(t, 4, variant)

	for _, bad := range []string{"", "NIKE001", "NI001", "NIK01", "NIK001-", "NIK001-0", "001NIK"} {
		_, _, ok := Split(bad)
		assert.False(t, ok, bad)
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("JOR042"))
	assert.True(t, Valid("JOR042-12"))
	assert.False(t, Valid("JOR42"))
}
