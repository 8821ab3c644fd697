package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/resaleops/stockroom/internal/catalog"
	"github.com/resaleops/stockroom/internal/consigner/domain"
	"github.com/resaleops/stockroom/internal/consigner/repository"
	itemdomain "github.com/resaleops/stockroom/internal/item/domain"
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

	require.NoError(t, db.AutoMigrate(&domain.Consigner{}, &itemdomain.Item{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	holder, err := catalog.NewStaticHolder(catalog.DefaultCatalog())
	require.NoError(t, err)

	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    repository.Provide(),
		Catalog: holder,
	})
	return svc, db, node
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct{ in, out string }{
		{"5551234567", "(555) 123-4567"},
		{"555-123-4567", "(555) 123-4567"},
		{"(555) 123-4567", "(555) 123-4567"},
		{"1-555-123-4567", "(555) 123-4567"},
		{"+1 555 123 4567", "(555) 123-4567"},
		{"", ""},
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.out, got, tc.in)
	}

	for _, bad := range []string{"12345", "555123456789", "2-555-123-4567"} {
		_, err := NormalizePhone(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidPhone, bad)
	}
}

func TestFindOrCreateByPhoneIsIdempotent(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	first, err := svc.FindOrCreate(ctx, domain.FindOrCreateRequest{
		Name:  "Jamie Cole",
		Phone: "555-123-4567",
	})
	require.NoError(t, err)
	assert.Equal(t, "(555) 123-4567", first.Phone)
	assert.Equal(t, 70, first.DefaultSplitPercentage)

	// different formatting, same number, even a different spelling of the name
	second, err := svc.FindOrCreate(ctx, domain.FindOrCreateRequest{
		Name:  "James Cole",
		Phone: "(555) 123 4567",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Jamie Cole", second.Name)
}

func TestFindOrCreateRequiresPhoneForNew(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.FindOrCreate(context.Background(), domain.FindOrCreateRequest{
		Name: "Jamie Cole",
	})
	assert.ErrorIs(t, err, domain.ErrPhoneRequired)
}

func TestFindOrCreateByNameOnly(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	created, err := svc.FindOrCreate(ctx, domain.FindOrCreateRequest{
		Name:  "Jamie Cole",
		Phone: "555-123-4567",
	})
	require.NoError(t, err)

	found, err := svc.FindOrCreate(ctx, domain.FindOrCreateRequest{Name: "jamie cole"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestFindOrCreateAmbiguousName(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.FindOrCreate(ctx, domain.FindOrCreateRequest{
		Name: "Jamie Cole", Phone: "555-123-4567",
	})
	require.NoError(t, err)
	_, err = svc.FindOrCreate(ctx, domain.FindOrCreateRequest{
		Name: "Jamie Cole", Phone: "555-987-6543",
	})
	require.NoError(t, err)

	_, err = svc.FindOrCreate(ctx, domain.FindOrCreateRequest{Name: "Jamie Cole"})
	var ambiguous *domain.AmbiguousMatchError
	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, "Jamie Cole", ambiguous.Name)
	assert.Len(t, ambiguous.Candidates, 2)
}

func TestFindOrCreateValidatesSplit(t *testing.T) {
	svc, _, _ := setup(t)

	bad := 120
	_, err := svc.FindOrCreate(context.Background(), domain.FindOrCreateRequest{
		Name: "Jamie Cole", Phone: "555-123-4567", DefaultSplit: &bad,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSplit)
}

func TestUpdateConsigner(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	created, err := svc.FindOrCreate(ctx, domain.FindOrCreateRequest{
		Name: "Jamie Cole", Phone: "555-123-4567",
	})
	require.NoError(t, err)

	split := 80
	email := "jamie@example.com"
	updated, err := svc.Update(ctx, domain.UpdateConsignerRequest{
		ID:           created.ID.String(),
		Email:        &email,
		DefaultSplit: &split,
	})
	require.NoError(t, err)
	assert.Equal(t, 80, updated.DefaultSplitPercentage)
	assert.Equal(t, "jamie@example.com", updated.Email)

	badEmail := "not-an-email"
	_, err = svc.Update(ctx, domain.UpdateConsignerRequest{
		ID:    created.ID.String(),
		Email: &badEmail,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.GetByID(ctx, "not-a-snowflake")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestStatisticsDeriveFromStoredSales(t *testing.T) {
	svc, db, node := setup(t)
	ctx := context.Background()

	consigner, err := svc.FindOrCreate(ctx, domain.FindOrCreateRequest{
		Name: "Jamie Cole", Phone: "555-123-4567",
	})
	require.NoError(t, err)

	split := 70
	soldPrice := int64(10000)
	soldFee := int64(630)
	seedItem(t, db, node, consigner.ID, itemdomain.StatusAvailable, 20000, nil, nil, &split, false)
	seedItem(t, db, node, consigner.ID, itemdomain.StatusHeld, 15000, nil, nil, &split, false)
	seedItem(t, db, node, consigner.ID, itemdomain.StatusSold, 10000, &soldPrice, &soldFee, &split, false)
	seedItem(t, db, node, consigner.ID, itemdomain.StatusSold, 10000, &soldPrice, &soldFee, &split, true)
	seedItem(t, db, node, consigner.ID, itemdomain.StatusDeleted, 5000, nil, nil, &split, false)

	stats, err := svc.Statistics(ctx, consigner.ID.String())
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalItems) // deleted excluded
	assert.Equal(t, int64(1), stats.AvailableItems)
	assert.Equal(t, int64(1), stats.HeldItems)
	assert.Equal(t, int64(2), stats.SoldItems)
	assert.Equal(t, int64(20000), stats.TotalCurrentValue)
	assert.Equal(t, int64(20000), stats.TotalSoldValue)
	// only the unpaid sale: (10000-630) * 70% = 6559
	assert.Equal(t, int64(6559), stats.PendingPayout)
}

var seededSKU int

func seedItem(
	t *testing.T,
	db *gorm.DB,
	node *snowflake.Node,
	consignerID snowflake.ID,
	status itemdomain.Status,
	currentPrice int64,
	soldPrice, soldFee *int64,
	split *int,
	payoutPaid bool,
) {
	t.Helper()
	seededSKU++
	item := itemdomain.Item{
		ID:              node.Generate(),
		SKU:             fmt.Sprintf("NIK%03d", seededSKU),
		Brand:           "nike",
		Model:           "Dunk Low",
		Condition:       itemdomain.ConditionDeadstock,
		BoxStatus:       itemdomain.BoxStatusBoth,
		CurrentPrice:    currentPrice,
		Status:          status,
		LocationID:      node.Generate(),
		OwnershipType:   itemdomain.OwnershipConsignment,
		ConsignerID:     &consignerID,
		SplitPercentage: split,
		SoldPrice:       soldPrice,
		SoldFee:         soldFee,
		PayoutPaid:      payoutPaid,
	}
	require.NoError(t, db.Create(&item).Error)
}
