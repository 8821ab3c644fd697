package domain

import (
	"context"
	"errors"
)

type CreateItemRequest struct {
	Brand         string
	Model         string
	Size          string
	Color         string
	Condition     string
	BoxStatus     string
	CurrentPrice  int64
	PurchasePrice int64
	LocationCode  string
	OwnershipType string
	ConsignerID   string
	// SplitPercentage overrides the consigner's default split for this item.
	SplitPercentage *int
	Notes           string
	Attributes      map[string]any
}

// UpdateItemRequest edits descriptive fields. Brand is immutable because the
// SKU prefix is derived from it; status, sale and payout fields have their own
// operations.
type UpdateItemRequest struct {
	SKU           string
	Model         *string
	Size          *string
	Color         *string
	Condition     *string
	BoxStatus     *string
	CurrentPrice  *int64
	PurchasePrice *int64
	Notes         *string
	Attributes    map[string]any
}

// TransitionRequest moves an item through the lifecycle table. SoldPrice is
// required when the target is sold; Reason optionally annotates a hold.
// FeeOverride, when set, is taken verbatim instead of the platform schedule.
// Buyer is free-form sale context retained in the item notes.
type TransitionRequest struct {
	SKU          string
	NewStatus    string
	SoldPrice    *int64
	SoldPlatform string
	FeeOverride  *int64
	Buyer        string
	Reason       string
}

// ReopenRequest reverts a sale recorded in error. It is the only way out of
// sold, it demands a reason, and it is refused once the payout has been paid.
type ReopenRequest struct {
	SKU    string
	Reason string
}

type MoveRequest struct {
	SKU          string
	LocationCode string
}

// CreateVariantRequest registers another physical unit of an existing item.
// Fields left empty inherit from the base; brand, model and ownership always
// inherit.
type CreateVariantRequest struct {
	BaseSKU       string
	Size          string
	Color         string
	Condition     string
	BoxStatus     string
	CurrentPrice  *int64
	PurchasePrice *int64
	LocationCode  string
}

type Service interface {
	Create(context.Context, CreateItemRequest) (Item, error)
	GetBySKU(ctx context.Context, sku string) (Item, error)
	Update(context.Context, UpdateItemRequest) (Item, error)
	TransitionStatus(context.Context, TransitionRequest) (Item, error)
	Reopen(context.Context, ReopenRequest) (Item, error)
	Move(context.Context, MoveRequest) (Item, error)
	RoundPrice(ctx context.Context, sku string) (Item, error)
	CreateVariant(context.Context, CreateVariantRequest) (Item, error)
	Search(context.Context, SearchRequest) (SearchResponse, error)
}

var (
	ErrNotFound           = errors.New("item_not_found")
	ErrInvalidBrand       = errors.New("invalid_brand")
	ErrInvalidModel       = errors.New("invalid_model")
	ErrInvalidCondition   = errors.New("invalid_condition")
	ErrInvalidBoxStatus   = errors.New("invalid_box_status")
	ErrInvalidPrice       = errors.New("invalid_price")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrInvalidOwnership   = errors.New("invalid_ownership_type")
	ErrInvalidSplit       = errors.New("invalid_split_percentage")
	ErrConsignerRequired  = errors.New("consigner_required")
	ErrConsignerForbidden = errors.New("consigner_not_allowed_for_owned_item")
	ErrSoldPriceRequired  = errors.New("sold_price_required")
	ErrInvalidFee         = errors.New("invalid_fee_override")
	ErrUnknownPlatform    = errors.New("unknown_platform")
	ErrAlreadySold        = errors.New("item_already_sold")
	ErrReasonRequired     = errors.New("reopen_reason_required")
	ErrPayoutAlreadyPaid  = errors.New("payout_already_paid")
	ErrVariantBaseDeleted = errors.New("variant_base_deleted")
)
