package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/resaleops/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

// SearchFilter is the resolved form of SearchRequest: codes and identifiers
// already translated to ids by the service layer.
type SearchFilter struct {
	Query           string
	Brand           string
	Model           string
	Size            string
	Color           string
	Status          Status
	OwnershipType   Ownership
	LocationID      *snowflake.ID
	ConsignerID     *snowflake.ID
	MinPrice        *int64
	MaxPrice        *int64
	IncludeDeleted  bool
	UnpaidOnly      bool
}

type SearchRequest struct {
	pagination.Pagination

	Query          string `form:"q"`
	Brand          string `form:"brand"`
	Model          string `form:"model"`
	Size           string `form:"size"`
	Color          string `form:"color"`
	Status         string `form:"status"`
	OwnershipType  string `form:"ownership_type"`
	LocationCode   string `form:"location"`
	ConsignerID    string `form:"consigner_id"`
	MinPrice       *int64 `form:"min_price"`
	MaxPrice       *int64 `form:"max_price"`
	IncludeDeleted bool   `form:"include_deleted"`
}

type SearchResponse struct {
	Items    []Item               `json:"items"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, item *Item) error
	FindBySKU(ctx context.Context, db *gorm.DB, sku string) (*Item, error)
	FindVariants(ctx context.Context, db *gorm.DB, groupID snowflake.ID) ([]*Item, error)
	Update(ctx context.Context, db *gorm.DB, item *Item) error
	Search(ctx context.Context, db *gorm.DB, filter SearchFilter, page pagination.Pagination) ([]*Item, error)
}
