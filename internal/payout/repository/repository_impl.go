package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	itemdomain "github.com/resaleops/stockroom/internal/item/domain"
	"github.com/resaleops/stockroom/internal/payout/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UnpaidItems(ctx context.Context, db *gorm.DB, consignerID snowflake.ID) ([]*itemdomain.Item, error) {
	var items []*itemdomain.Item
	err := db.WithContext(ctx).
		Where("consigner_id = ?", consignerID).
		Where("ownership_type = ?", itemdomain.OwnershipConsignment).
		Where("status = ?", itemdomain.StatusSold).
		Where("payout_paid = ?", false).
		Order("sold_date asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) MarkItemsPaid(ctx context.Context, db *gorm.DB, itemIDs []snowflake.ID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Model(&itemdomain.Item{}).
		Where("id IN ?", itemIDs).
		Update("payout_paid", true).Error
}

func (r *repo) InsertReceipt(ctx context.Context, db *gorm.DB, receipt *domain.Receipt) error {
	return db.WithContext(ctx).Create(receipt).Error
}

func (r *repo) ListReceipts(ctx context.Context, db *gorm.DB, consignerID snowflake.ID) ([]domain.Receipt, error) {
	var receipts []domain.Receipt
	err := db.WithContext(ctx).
		Where("consigner_id = ?", consignerID).
		Order("created_at desc").
		Find(&receipts).Error
	if err != nil {
		return nil, err
	}
	return receipts, nil
}
