package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/resaleops/stockroom/internal/location/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, location *domain.Location) error {
	return db.WithContext(ctx).Create(location).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Location, error) {
	var location domain.Location
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&location).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &location, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Location, error) {
	var location domain.Location
	err := db.WithContext(ctx).
		Where("code = ?", code).
		Take(&location).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &location, nil
}

func (r *repo) Search(ctx context.Context, db *gorm.DB, query string, includeInactive bool) ([]*domain.Location, error) {
	var locations []*domain.Location
	stmt := db.WithContext(ctx).Model(&domain.Location{})
	if !includeInactive {
		stmt = stmt.Where("active = ?", true)
	}
	if query = strings.TrimSpace(query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		stmt = stmt.Where("LOWER(code) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if err := stmt.Order("code asc").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, location *domain.Location) error {
	return db.WithContext(ctx).Save(location).Error
}

func (r *repo) CountOccupants(ctx context.Context, db *gorm.DB, locationID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM items WHERE location_id = ? AND status <> 'deleted'`,
		locationID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB) ([]domain.LocationStats, error) {
	var stats []domain.LocationStats
	err := db.WithContext(ctx).Raw(
		`SELECT l.code AS code, l.description AS description, COUNT(i.id) AS item_count
		 FROM locations l
		 LEFT JOIN items i ON i.location_id = l.id AND i.status <> 'deleted'
		 WHERE l.active = ?
		 GROUP BY l.id, l.code, l.description
		 ORDER BY l.code`,
		true,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
