package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/resaleops/stockroom/internal/consigner/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, consigner *domain.Consigner) error {
	return db.WithContext(ctx).Create(consigner).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Consigner, error) {
	var consigner domain.Consigner
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&consigner).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &consigner, nil
}

func (r *repo) FindByPhone(ctx context.Context, db *gorm.DB, phone string) (*domain.Consigner, error) {
	var consigner domain.Consigner
	err := db.WithContext(ctx).
		Where("phone = ?", phone).
		Take(&consigner).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &consigner, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) ([]*domain.Consigner, error) {
	var consigners []*domain.Consigner
	err := db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("created_at asc").
		Find(&consigners).Error
	if err != nil {
		return nil, err
	}
	return consigners, nil
}

func (r *repo) Search(ctx context.Context, db *gorm.DB, query string) ([]*domain.Consigner, error) {
	var consigners []*domain.Consigner
	stmt := db.WithContext(ctx).Model(&domain.Consigner{})
	if query = strings.TrimSpace(query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		stmt = stmt.Where("LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}
	if err := stmt.Order("name asc").Find(&consigners).Error; err != nil {
		return nil, err
	}
	return consigners, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, consigner *domain.Consigner) error {
	return db.WithContext(ctx).Save(consigner).Error
}

func (r *repo) StatusCounts(ctx context.Context, db *gorm.DB, id snowflake.ID) (domain.StatusCounts, error) {
	var counts domain.StatusCounts
	err := db.WithContext(ctx).Raw(
		`SELECT
			COUNT(*) AS total_items,
			COALESCE(SUM(CASE WHEN status = 'available' THEN 1 ELSE 0 END), 0) AS available_items,
			COALESCE(SUM(CASE WHEN status = 'held' THEN 1 ELSE 0 END), 0) AS held_items,
			COALESCE(SUM(CASE WHEN status = 'sold' THEN 1 ELSE 0 END), 0) AS sold_items,
			COALESCE(SUM(CASE WHEN status = 'available' THEN current_price ELSE 0 END), 0) AS total_current_value,
			COALESCE(SUM(CASE WHEN status = 'sold' THEN COALESCE(sold_price, 0) ELSE 0 END), 0) AS total_sold_value
		 FROM items
		 WHERE consigner_id = ? AND status <> 'deleted'`,
		id,
	).Scan(&counts).Error
	if err != nil {
		return domain.StatusCounts{}, err
	}
	return counts, nil
}

func (r *repo) UnpaidSales(ctx context.Context, db *gorm.DB, id snowflake.ID) ([]domain.UnpaidSale, error) {
	var sales []domain.UnpaidSale
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(sold_price, 0) AS sold_price,
		        COALESCE(sold_fee, 0) AS sold_fee,
		        COALESCE(split_percentage, 0) AS split_percentage
		 FROM items
		 WHERE consigner_id = ?
		   AND ownership_type = 'consignment'
		   AND status = 'sold'
		   AND payout_paid = ?`,
		id,
		false,
	).Scan(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}
