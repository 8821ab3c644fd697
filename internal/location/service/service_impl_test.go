package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	itemdomain "github.com/resaleops/stockroom/internal/item/domain"
	"github.com/resaleops/stockroom/internal/location/domain"
	"github.com/resaleops/stockroom/internal/location/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Location{}, &itemdomain.Item{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, db, node
}

func TestCreateNormalizesCode(t *testing.T) {
	svc, _, _ := setup(t)

	location, err := svc.Create(context.Background(), domain.CreateLocationRequest{
		Code: "  shelf-a ",
		Type: "Store-Floor",
	})
	require.NoError(t, err)
	assert.Equal(t, "SHELF-A", location.Code)
	assert.Equal(t, domain.TypeStoreFloor, location.Type)
	assert.True(t, location.Active)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateLocationRequest{Code: "shelf a"})
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	_, err = svc.Create(ctx, domain.CreateLocationRequest{Code: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	_, err = svc.Create(ctx, domain.CreateLocationRequest{Code: "SHELF-A", Type: "attic"})
	assert.ErrorIs(t, err, domain.ErrInvalidType)
}

func TestCreateDuplicateCode(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateLocationRequest{Code: "SHELF-A"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateLocationRequest{Code: "shelf-a"})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)
}

func TestDeactivateReportsOccupants(t *testing.T) {
	svc, db, node := setup(t)
	ctx := context.Background()

	location, err := svc.Create(ctx, domain.CreateLocationRequest{Code: "SHELF-A"})
	require.NoError(t, err)

	for i, status := range []itemdomain.Status{
		itemdomain.StatusAvailable,
		itemdomain.StatusHeld,
		itemdomain.StatusDeleted, // deleted items do not count as occupants
	} {
		item := itemdomain.Item{
			ID:           node.Generate(),
			SKU:          fmt.Sprintf("NIK%03d", i+1),
			Brand:        "nike",
			Model:        "Dunk Low",
			Condition:    itemdomain.ConditionDeadstock,
			BoxStatus:    itemdomain.BoxStatusBoth,
			CurrentPrice: 10000,
			Status:       status,
			LocationID:   location.ID,
		}
		require.NoError(t, db.Create(&item).Error)
	}

	result, err := svc.Deactivate(ctx, "SHELF-A")
	require.NoError(t, err)
	assert.False(t, result.Location.Active)
	assert.Equal(t, int64(2), result.Occupants)

	_, err = svc.Deactivate(ctx, "NOWHERE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInactiveLocationRoundTrips(t *testing.T) {
	svc, db, node := setup(t)

	// a column default on active would silently flip a false back to true
	location := domain.Location{
		ID:     node.Generate(),
		Code:   "OLD-UNIT",
		Type:   domain.TypeStorage,
		Active: false,
	}
	require.NoError(t, db.Create(&location).Error)

	got, err := svc.GetByCode(context.Background(), "OLD-UNIT")
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestListAndFind(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateLocationRequest{Code: "SHELF-A", Description: "front wall"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateLocationRequest{Code: "BACK-01", Type: "storage"})
	require.NoError(t, err)
	_, err = svc.Deactivate(ctx, "BACK-01")
	require.NoError(t, err)

	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := svc.Find(ctx, "front")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "SHELF-A", found[0].Code)
}

func TestSuggestCodeAvoidsCollisions(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	code, err := svc.SuggestCode(ctx, domain.SuggestCodeRequest{Type: "storage", Description: "garage bins"})
	require.NoError(t, err)
	assert.Equal(t, "STOR-GAR", code)

	_, err = svc.Create(ctx, domain.CreateLocationRequest{Code: code, Type: "storage"})
	require.NoError(t, err)

	next, err := svc.SuggestCode(ctx, domain.SuggestCodeRequest{Type: "storage", Description: "garage bins"})
	require.NoError(t, err)
	assert.Equal(t, "STOR-GAR-01", next)
}

func TestStats(t *testing.T) {
	svc, db, node := setup(t)
	ctx := context.Background()

	location, err := svc.Create(ctx, domain.CreateLocationRequest{Code: "SHELF-A"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateLocationRequest{Code: "EMPTY-01"})
	require.NoError(t, err)

	item := itemdomain.Item{
		ID:           node.Generate(),
		SKU:          "NIK001",
		Brand:        "nike",
		Model:        "Dunk Low",
		Condition:    itemdomain.ConditionDeadstock,
		BoxStatus:    itemdomain.BoxStatusBoth,
		CurrentPrice: 10000,
		Status:       itemdomain.StatusAvailable,
		LocationID:   location.ID,
	}
	require.NoError(t, db.Create(&item).Error)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	counts := map[string]int64{}
	for _, row := range stats {
		counts[row.Code] = row.ItemCount
	}
	assert.Equal(t, int64(1), counts["SHELF-A"])
	assert.Equal(t, int64(0), counts["EMPTY-01"])
}
