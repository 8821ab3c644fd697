package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/resaleops/stockroom/internal/catalog"
	"github.com/resaleops/stockroom/internal/clock"
	consignerdomain "github.com/resaleops/stockroom/internal/consigner/domain"
	consignerrepo "github.com/resaleops/stockroom/internal/consigner/repository"
	"github.com/resaleops/stockroom/internal/item/domain"
	itemrepo "github.com/resaleops/stockroom/internal/item/repository"
	locationdomain "github.com/resaleops/stockroom/internal/location/domain"
	locationrepo "github.com/resaleops/stockroom/internal/location/repository"
	"github.com/resaleops/stockroom/internal/sku"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc       domain.Service
	db        *gorm.DB
	node      *snowflake.Node
	clock     *clock.FakeClock
	shelf     locationdomain.Location
	backroom  locationdomain.Location
	closed    locationdomain.Location
	consigner consignerdomain.Consigner
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&locationdomain.Location{},
		&consignerdomain.Consigner{},
		&domain.Item{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	holder, err := catalog.NewStaticHolder(catalog.DefaultCatalog())
	require.NoError(t, err)
	allocator := sku.NewAllocator(holder)

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	f := &fixture{
		db:    db,
		node:  node,
		clock: fake,
		shelf: locationdomain.Location{
			ID: node.Generate(), Code: "SHELF-A", Type: locationdomain.TypeStoreFloor, Active: true,
		},
		backroom: locationdomain.Location{
			ID: node.Generate(), Code: "BACK-01", Type: locationdomain.TypeStorage, Active: true,
		},
		closed: locationdomain.Location{
			ID: node.Generate(), Code: "OLD-UNIT", Type: locationdomain.TypeStorage, Active: false,
		},
		consigner: consignerdomain.Consigner{
			ID: node.Generate(), Name: "Jamie Cole", Phone: "(555) 123-4567", DefaultSplitPercentage: 70,
		},
	}
	require.NoError(t, db.Create(&f.shelf).Error)
	require.NoError(t, db.Create(&f.backroom).Error)
	require.NoError(t, db.Create(&f.closed).Error)
	require.NoError(t, db.Create(&f.consigner).Error)

	f.svc = New(Params{
		DB:            db,
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         fake,
		Repo:          itemrepo.Provide(),
		LocationRepo:  locationrepo.Provide(),
		ConsignerRepo: consignerrepo.Provide(),
		Allocator:     allocator,
		Catalog:       holder,
	})
	return f
}

func (f *fixture) createItem(t *testing.T, brand string) domain.Item {
	t.Helper()
	item, err := f.svc.Create(context.Background(), domain.CreateItemRequest{
		Brand:        brand,
		Model:        "Dunk Low",
		Size:         "10",
		Condition:    "DS",
		BoxStatus:    "both",
		CurrentPrice: 20000,
		LocationCode: "SHELF-A",
	})
	require.NoError(t, err)
	return item
}

func TestCreateAssignsSequentialSKUs(t *testing.T) {
	f := setup(t)

	first := f.createItem(t, "nike")
	second := f.createItem(t, "nike")
	other := f.createItem(t, "jordan")

	assert.Equal(t, "NIK001", first.SKU)
	assert.Equal(t, "NIK002", second.SKU)
	assert.Equal(t, "JOR001", other.SKU)
	assert.Equal(t, domain.StatusAvailable, first.Status)
	assert.Equal(t, domain.OwnershipOwned, first.OwnershipType)
	assert.Equal(t, f.shelf.ID, first.LocationID)
}

func TestCreateUnknownBrand(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Create(context.Background(), domain.CreateItemRequest{
		Brand:        "asics",
		Model:        "GT-2160",
		Condition:    "DS",
		BoxStatus:    "box",
		CurrentPrice: 9000,
		LocationCode: "SHELF-A",
	})
	var unknown *sku.UnknownBrandError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "asics", unknown.Brand)
	assert.NotEmpty(t, unknown.SuggestedPrefix)
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	base := domain.CreateItemRequest{
		Brand:        "nike",
		Model:        "Dunk Low",
		Condition:    "DS",
		BoxStatus:    "both",
		CurrentPrice: 20000,
		LocationCode: "SHELF-A",
	}

	req := base
	req.Condition = "mint"
	_, err := f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidCondition)

	req = base
	req.BoxStatus = "shoebox"
	_, err = f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidBoxStatus)

	req = base
	req.CurrentPrice = -1
	_, err = f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	req = base
	req.LocationCode = "NOWHERE"
	_, err = f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, locationdomain.ErrNotFound)

	req = base
	req.LocationCode = "OLD-UNIT"
	_, err = f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, locationdomain.ErrInactive)

	req = base
	req.OwnershipType = "consignment"
	_, err = f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrConsignerRequired)

	req = base
	req.ConsignerID = f.consigner.ID.String()
	_, err = f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrConsignerForbidden)
}

func TestCreateConsignmentDefaultsSplit(t *testing.T) {
	f := setup(t)

	item, err := f.svc.Create(context.Background(), domain.CreateItemRequest{
		Brand:         "supreme",
		Model:         "Box Logo Hoodie",
		Condition:     "VNDS",
		BoxStatus:     "tag",
		CurrentPrice:  45000,
		LocationCode:  "SHELF-A",
		OwnershipType: "consignment",
		ConsignerID:   f.consigner.ID.String(),
	})
	require.NoError(t, err)
	require.NotNil(t, item.SplitPercentage)
	assert.Equal(t, 70, *item.SplitPercentage)
	require.NotNil(t, item.ConsignerID)
	assert.Equal(t, f.consigner.ID, *item.ConsignerID)
}

func TestSellStoresFeeAndTimestamp(t *testing.T) {
	f := setup(t)
	item := f.createItem(t, "nike")

	price := int64(10000)
	sold, err := f.svc.TransitionStatus(context.Background(), domain.TransitionRequest{
		SKU:          item.SKU,
		NewStatus:    "sold",
		SoldPrice:    &price,
		SoldPlatform: "grailed",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSold, sold.Status)
	require.NotNil(t, sold.SoldPrice)
	assert.Equal(t, int64(10000), *sold.SoldPrice)
	require.NotNil(t, sold.SoldFee)
	assert.Equal(t, int64(630), *sold.SoldFee)
	require.NotNil(t, sold.SoldDate)
	assert.Equal(t, f.clock.Now(), sold.SoldDate.UTC())
	assert.False(t, sold.PayoutPaid)
}

func TestSellTwiceIsAlreadySold(t *testing.T) {
	f := setup(t)
	item := f.createItem(t, "nike")

	price := int64(10000)
	_, err := f.svc.TransitionStatus(context.Background(), domain.TransitionRequest{
		SKU: item.SKU, NewStatus: "sold", SoldPrice: &price,
	})
	require.NoError(t, err)

	_, err = f.svc.TransitionStatus(context.Background(), domain.TransitionRequest{
		SKU: item.SKU, NewStatus: "sold", SoldPrice: &price,
	})
	assert.ErrorIs(t, err, domain.ErrAlreadySold)
}

func TestSellRequiresPrice(t *testing.T) {
	f := setup(t)
	item := f.createItem(t, "nike")

	_, err := f.svc.TransitionStatus(context.Background(), domain.TransitionRequest{
		SKU: item.SKU, NewStatus: "sold",
	})
	assert.ErrorIs(t, err, domain.ErrSoldPriceRequired)
}

func TestSellUnknownPlatform(t *testing.T) {
	f := setup(t)
	item := f.createItem(t, "nike")

	price := int64(10000)
	_, err := f.svc.TransitionStatus(context.Background(), domain.TransitionRequest{
		SKU: item.SKU, NewStatus: "sold", SoldPrice: &price, SoldPlatform: "amazon",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownPlatform)
}

func TestHoldAndRelease(t *testing.T) {
	f := setup(t)
	item := f.createItem(t, "nike")
	ctx := context.Background()

	// the reason is optional
	held, err := f.svc.TransitionStatus(ctx, domain.TransitionRequest{
		SKU: item.SKU, NewStatus: "held",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusHeld, held.Status)
	assert.Empty(t, held.HoldReason)

	released, err := f.svc.TransitionStatus(ctx, domain.TransitionRequest{
		SKU: item.SKU, NewStatus: "available",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, released.Status)

	held, err = f.svc.TransitionStatus(ctx, domain.TransitionRequest{
		SKU: item.SKU, NewStatus: "held", Reason: "customer pickup saturday",
	})
	require.NoError(t, err)
	assert.Equal(t, "customer pickup saturday", held.HoldReason)

	released, err = f.svc.TransitionStatus(ctx, domain.TransitionRequest{
		SKU: item.SKU, NewStatus: "available",
	})
	require.NoError(t, err)
	assert.Empty(t, released.HoldReason)
}

func TestSellHeldItem(t *testing.T) {
	f := setup(t)
	item := f.createItem(t, "nike")
	ctx := context.Background()

	_, err := f.svc.TransitionStatus(ctx, domain.TransitionRequest{
		SKU: item.SKU, NewStatus: "held", Reason: "deposit taken",
	})
	require.NoError(t, err)

	// a hold is often the step before the sale closes
	price := int64(10000)
	sold, err := f.svc.TransitionStatus(ctx, domain.TransitionRequest{
		SKU: item.SKU, NewStatus: "sold", SoldPrice: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSold, sold.Status)
	assert.Empty(t, sold.HoldReason)
}

func TestSellWithFeeOverrideAndBuyer(t *testing.T) {
	f := setup(t)
	item := f.createItem(t, "nike")
	ctx := context.Background()

	price := int64(10000)
	override := int64(1234)
	sold, err := f.svc.TransitionStatus(ctx, domain.TransitionRequest{
		SKU: item.SKU, NewStatus: "sold", SoldPrice: &price,
		SoldPlatform: "local-meetup", FeeOverride: &override,
		Buyer: "John Smith",
	})
	require.NoError(t, err)
	require.NotNil(t, sold.SoldFee)
	assert.Equal(t, int64(1234), *sold.SoldFee)
	assert.Contains(t, sold.Notes, "buyer: John Smith")

	negative := int64(-1)
	other := f.createItem(t, "nike")
	_, err = f.svc.TransitionStatus(ctx, domain.TransitionRequest{
		SKU: other.SKU, NewStatus: "sold", SoldPrice: &price, FeeOverride: &negative,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidFee)
}

func TestDeletedIsTerminal(t *testing.T) {
	f := setup(t)
	item := f.createItem(t, "nike")
	ctx := context.Background()

	_, err := f.svc.TransitionStatus(ctx, domain.TransitionRequest{
		SKU: item.SKU, NewStatus: "deleted",
	})
	require.NoError(t, err)

	_, err = f.svc.TransitionStatus(ctx, domain.TransitionRequest{
		SKU: item.SKU, NewStatus: "available",
	})
	var invalid *domain.InvalidTransitionError
	assert.True(t, errors.As(err, &invalid))
}

func TestReopenClearsSaleFields(t *testing.T) {
	f := setup(t)
	item := f.createItem(t, "nike")
	ctx := context.Background()

	price := int64(10000)
	_, err := f.svc.TransitionStatus(ctx, domain.TransitionRequest{
		SKU: item.SKU, NewStatus: "sold", SoldPrice: &price, SoldPlatform: "goat",
	})
	require.NoError(t, err)

	_, err = f.svc.Reopen(ctx, domain.ReopenRequest{SKU: item.SKU})
	assert.ErrorIs(t, err, domain.ErrReasonRequired)

	reopened, err := f.svc.Reopen(ctx, domain.ReopenRequest{
		SKU: item.SKU, Reason: "rang up the wrong pair",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, reopened.Status)
	assert.Nil(t, reopened.SoldPrice)
	assert.Nil(t, reopened.SoldFee)
	assert.Empty(t, reopened.SoldPlatform)
	assert.Nil(t, reopened.SoldDate)
	assert.Contains(t, reopened.Notes, "rang up the wrong pair")

	// item can be sold again after the correction
	_, err = f.svc.TransitionStatus(ctx, domain.TransitionRequest{
		SKU: item.SKU, NewStatus: "sold", SoldPrice: &price,
	})
	assert.NoError(t, err)
}

func TestReopenRejectedOncePayoutPaid(t *testing.T) {
	f := setup(t)
	item := f.createItem(t, "nike")
	ctx := context.Background()

	price := int64(10000)
	_, err := f.svc.TransitionStatus(ctx, domain.TransitionRequest{
		SKU: item.SKU, NewStatus: "sold", SoldPrice: &price,
	})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&domain.Item{}).
		Where("sku = ?", item.SKU).
		Update("payout_paid", true).Error)

	_, err = f.svc.Reopen(ctx, domain.ReopenRequest{
		SKU: item.SKU, Reason: "mistake",
	})
	assert.ErrorIs(t, err, domain.ErrPayoutAlreadyPaid)
}

func TestReopenOnlyAppliesToSold(t *testing.T) {
	f := setup(t)
	item := f.createItem(t, "nike")

	_, err := f.svc.Reopen(context.Background(), domain.ReopenRequest{
		SKU: item.SKU, Reason: "nothing to reopen",
	})
	var invalid *domain.InvalidTransitionError
	assert.True(t, errors.As(err, &invalid))
}

func TestMove(t *testing.T) {
	f := setup(t)
	item := f.createItem(t, "nike")
	ctx := context.Background()

	moved, err := f.svc.Move(ctx, domain.MoveRequest{SKU: item.SKU, LocationCode: "back-01"})
	require.NoError(t, err)
	assert.Equal(t, f.backroom.ID, moved.LocationID)

	_, err = f.svc.Move(ctx, domain.MoveRequest{SKU: item.SKU, LocationCode: "OLD-UNIT"})
	assert.ErrorIs(t, err, locationdomain.ErrInactive)
}

func TestRoundPrice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, domain.CreateItemRequest{
		Brand:        "nike",
		Model:        "Dunk Low",
		Condition:    "DS",
		BoxStatus:    "both",
		CurrentPrice: 20100,
		LocationCode: "SHELF-A",
	})
	require.NoError(t, err)

	rounded, err := f.svc.RoundPrice(ctx, item.SKU)
	require.NoError(t, err)
	assert.Equal(t, int64(20500), rounded.CurrentPrice)

	// idempotent once on the step
	again, err := f.svc.RoundPrice(ctx, item.SKU)
	require.NoError(t, err)
	assert.Equal(t, int64(20500), again.CurrentPrice)
}

func TestCreateVariant(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	base := f.createItem(t, "nike")

	variant, err := f.svc.CreateVariant(ctx, domain.CreateVariantRequest{
		BaseSKU: base.SKU,
		Size:    "11",
	})
	require.NoError(t, err)
	assert.Equal(t, base.SKU+"-2", variant.SKU)
	assert.Equal(t, base.Brand, variant.Brand)
	assert.Equal(t, base.Model, variant.Model)
	assert.Equal(t, "11", variant.Size)
	assert.Equal(t, base.CurrentPrice, variant.CurrentPrice)
	require.NotNil(t, variant.VariantGroupID)
	assert.Equal(t, base.ID, *variant.VariantGroupID)

	// base row now carries the group id too
	stored, err := f.svc.GetBySKU(ctx, base.SKU)
	require.NoError(t, err)
	require.NotNil(t, stored.VariantGroupID)
	assert.Equal(t, base.ID, *stored.VariantGroupID)

	second, err := f.svc.CreateVariant(ctx, domain.CreateVariantRequest{BaseSKU: base.SKU})
	require.NoError(t, err)
	assert.Equal(t, base.SKU+"-3", second.SKU)
}

func TestCreateVariantOfDeletedBase(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	base := f.createItem(t, "nike")

	_, err := f.svc.TransitionStatus(ctx, domain.TransitionRequest{
		SKU: base.SKU, NewStatus: "deleted",
	})
	require.NoError(t, err)

	_, err = f.svc.CreateVariant(ctx, domain.CreateVariantRequest{BaseSKU: base.SKU})
	assert.ErrorIs(t, err, domain.ErrVariantBaseDeleted)
}

func TestSearchFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	nike := f.createItem(t, "nike")
	jordan := f.createItem(t, "jordan")
	_, err := f.svc.TransitionStatus(ctx, domain.TransitionRequest{
		SKU: jordan.SKU, NewStatus: "deleted",
	})
	require.NoError(t, err)

	resp, err := f.svc.Search(ctx, domain.SearchRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1) // deleted hidden by default
	assert.Equal(t, nike.SKU, resp.Items[0].SKU)

	resp, err = f.svc.Search(ctx, domain.SearchRequest{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 2)

	resp, err = f.svc.Search(ctx, domain.SearchRequest{Brand: "JORDAN", IncludeDeleted: true})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, jordan.SKU, resp.Items[0].SKU)

	resp, err = f.svc.Search(ctx, domain.SearchRequest{Status: "deleted"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, jordan.SKU, resp.Items[0].SKU)

	_, err = f.svc.Search(ctx, domain.SearchRequest{Status: "gone"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	blue, err := f.svc.Create(ctx, domain.CreateItemRequest{
		Brand:        "nike",
		Model:        "Dunk Low",
		Color:        "University Blue",
		Condition:    "DS",
		BoxStatus:    "both",
		CurrentPrice: 20000,
		LocationCode: "SHELF-A",
	})
	require.NoError(t, err)

	resp, err = f.svc.Search(ctx, domain.SearchRequest{Color: "blue"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, blue.SKU, resp.Items[0].SKU)
}

func TestConcurrentCreatesAllocateDistinctSKUs(t *testing.T) {
	f := setup(t)
	const workers = 8

	type result struct {
		sku string
		err error
	}
	results := make(chan result, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item, err := f.svc.Create(context.Background(), domain.CreateItemRequest{
				Brand:        "nike",
				Model:        "Dunk Low",
				Condition:    "DS",
				BoxStatus:    "both",
				CurrentPrice: 20000,
				LocationCode: "SHELF-A",
			})
			results <- result{sku: item.SKU, err: err}
		}()
	}
	wg.Wait()
	close(results)

	seen := map[string]bool{}
	for r := range results {
		require.NoError(t, r.err)
		assert.False(t, seen[r.sku], "sku %s allocated twice", r.sku)
		seen[r.sku] = true
	}
	assert.Len(t, seen, workers)
}

func TestSearchPagination(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		f.createItem(t, "nike")
	}

	req := domain.SearchRequest{}
	req.PageSize = 2
	resp, err := f.svc.Search(ctx, req)
	require.NoError(t, err)
	assert.Len(t, resp.Items, 2)
	require.NotNil(t, resp.PageInfo)
	assert.True(t, resp.PageInfo.HasMore)

	seen := map[string]bool{}
	for _, item := range resp.Items {
		seen[item.SKU] = true
	}
	for resp.PageInfo.HasMore {
		req.PageToken = resp.PageInfo.NextPageToken
		resp, err = f.svc.Search(ctx, req)
		require.NoError(t, err)
		for _, item := range resp.Items {
			assert.False(t, seen[item.SKU], "duplicate %s across pages", item.SKU)
			seen[item.SKU] = true
		}
	}
	assert.Len(t, seen, 5)
}
