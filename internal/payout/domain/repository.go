package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	itemdomain "github.com/resaleops/stockroom/internal/item/domain"
	"gorm.io/gorm"
)

type Repository interface {
	UnpaidItems(ctx context.Context, db *gorm.DB, consignerID snowflake.ID) ([]*itemdomain.Item, error)
	MarkItemsPaid(ctx context.Context, db *gorm.DB, itemIDs []snowflake.ID) error
	InsertReceipt(ctx context.Context, db *gorm.DB, receipt *Receipt) error
	ListReceipts(ctx context.Context, db *gorm.DB, consignerID snowflake.ID) ([]Receipt, error)
}
