package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// StatusCounts carries the per-status aggregates read from the items table.
type StatusCounts struct {
	TotalItems        int64
	AvailableItems    int64
	HeldItems         int64
	SoldItems         int64
	TotalCurrentValue int64
	TotalSoldValue    int64
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, consigner *Consigner) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Consigner, error)
	FindByPhone(ctx context.Context, db *gorm.DB, phone string) (*Consigner, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) ([]*Consigner, error)
	Search(ctx context.Context, db *gorm.DB, query string) ([]*Consigner, error)
	Update(ctx context.Context, db *gorm.DB, consigner *Consigner) error
	StatusCounts(ctx context.Context, db *gorm.DB, id snowflake.ID) (StatusCounts, error)
	UnpaidSales(ctx context.Context, db *gorm.DB, id snowflake.ID) ([]UnpaidSale, error)
}
