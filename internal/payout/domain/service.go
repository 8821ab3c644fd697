package domain

import (
	"context"
	"errors"
)

// RecordSaleRequest records a sale against an item. Platform is optional; an
// empty platform means an in-store sale with no fee. FeeOverride replaces the
// schedule fee verbatim; Buyer is kept with the item's notes.
type RecordSaleRequest struct {
	SKU         string
	SalePrice   *int64
	Platform    string
	Buyer       string
	FeeOverride *int64
}

// QuoteRequest previews a breakdown without touching any item: what would the
// money look like if this sold at this price on this platform.
type QuoteRequest struct {
	SalePrice       int64
	Platform        string
	SplitPercentage *int
}

type Service interface {
	RecordSale(context.Context, RecordSaleRequest) (SaleResult, error)
	Quote(context.Context, QuoteRequest) (Breakdown, error)
	Pending(ctx context.Context, consignerID string) (PendingPayout, error)
	MarkPaid(ctx context.Context, consignerID string) (MarkPaidResult, error)
	Receipts(ctx context.Context, consignerID string) ([]Receipt, error)
}

var (
	ErrInvalidSalePrice = errors.New("invalid_sale_price")
	ErrInvalidSplit     = errors.New("invalid_quote_split")
	ErrNotConsignment   = errors.New("not_consignment")
)
