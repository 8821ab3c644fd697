package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, location *Location) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Location, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Location, error)
	Search(ctx context.Context, db *gorm.DB, query string, includeInactive bool) ([]*Location, error)
	Update(ctx context.Context, db *gorm.DB, location *Location) error
	CountOccupants(ctx context.Context, db *gorm.DB, locationID snowflake.ID) (int64, error)
	Stats(ctx context.Context, db *gorm.DB) ([]LocationStats, error)
}
