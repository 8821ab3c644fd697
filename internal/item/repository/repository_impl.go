package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/resaleops/stockroom/internal/item/domain"
	"github.com/resaleops/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, item *domain.Item) error {
	return db.WithContext(ctx).Create(item).Error
}

func (r *repo) FindBySKU(ctx context.Context, db *gorm.DB, sku string) (*domain.Item, error) {
	var item domain.Item
	err := db.WithContext(ctx).
		Where("sku = ?", sku).
		Take(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) FindVariants(ctx context.Context, db *gorm.DB, groupID snowflake.ID) ([]*domain.Item, error) {
	var items []*domain.Item
	err := db.WithContext(ctx).
		Where("variant_group_id = ? OR id = ?", groupID, groupID).
		Order("sku asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, item *domain.Item) error {
	return db.WithContext(ctx).Save(item).Error
}

func (r *repo) Search(ctx context.Context, db *gorm.DB, filter domain.SearchFilter, page pagination.Pagination) ([]*domain.Item, error) {
	stmt := db.WithContext(ctx).Model(&domain.Item{})

	if !filter.IncludeDeleted {
		stmt = stmt.Where("status <> ?", domain.StatusDeleted)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Brand != "" {
		stmt = stmt.Where("LOWER(brand) = ?", strings.ToLower(filter.Brand))
	}
	if filter.Model != "" {
		stmt = stmt.Where("LOWER(model) LIKE ?", "%"+strings.ToLower(filter.Model)+"%")
	}
	if filter.Size != "" {
		stmt = stmt.Where("size = ?", filter.Size)
	}
	if filter.Color != "" {
		stmt = stmt.Where("LOWER(color) LIKE ?", "%"+strings.ToLower(filter.Color)+"%")
	}
	if filter.OwnershipType != "" {
		stmt = stmt.Where("ownership_type = ?", filter.OwnershipType)
	}
	if filter.LocationID != nil {
		stmt = stmt.Where("location_id = ?", *filter.LocationID)
	}
	if filter.ConsignerID != nil {
		stmt = stmt.Where("consigner_id = ?", *filter.ConsignerID)
	}
	if filter.MinPrice != nil {
		stmt = stmt.Where("current_price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		stmt = stmt.Where("current_price <= ?", *filter.MaxPrice)
	}
	if filter.UnpaidOnly {
		stmt = stmt.Where("ownership_type = ? AND status = ? AND payout_paid = ?",
			domain.OwnershipConsignment, domain.StatusSold, false)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		stmt = stmt.Where(
			"LOWER(sku) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(model) LIKE ? OR LOWER(color) LIKE ? OR LOWER(notes) LIKE ?",
			like, like, like, like, like,
		)
	}

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, err
		}
		// bind the id numerically or the keyset comparison degrades to a
		// string match against the bigint column
		cursorID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("created_at < ? OR (created_at = ? AND id < ?)",
			createdAt, createdAt, int64(cursorID))
	}

	var items []*domain.Item
	err := stmt.
		Order("created_at desc").
		Order("id desc").
		Limit(page.PageSize + 1).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
