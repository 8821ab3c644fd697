package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	itemdomain "github.com/resaleops/stockroom/internal/item/domain"
)

// Breakdown is the money split for one sale.
type Breakdown struct {
	SalePrice      int64 `json:"sale_price"`
	Fee            int64 `json:"fee"`
	NetProceeds    int64 `json:"net_proceeds"`
	NetToStore     int64 `json:"net_to_store"`
	NetToConsigner int64 `json:"net_to_consigner"`
}

// SaleResult is the outcome of recording a sale.
type SaleResult struct {
	Item      itemdomain.Item `json:"item"`
	Breakdown Breakdown       `json:"breakdown"`
}

// PendingItem is one sold, unpaid consignment item contributing to a payout.
type PendingItem struct {
	SKU             string     `json:"sku"`
	Brand           string     `json:"brand"`
	Model           string     `json:"model"`
	SoldPrice       int64      `json:"sold_price"`
	SoldFee         int64      `json:"sold_fee"`
	SplitPercentage int        `json:"split_percentage"`
	Share           int64      `json:"share"`
	SoldDate        *time.Time `json:"sold_date,omitempty"`
}

// PendingPayout is the derived, per-consigner aggregation of unpaid shares.
type PendingPayout struct {
	ConsignerID snowflake.ID  `json:"consigner_id"`
	Items       []PendingItem `json:"items"`
	Total       int64         `json:"total"`
}

// Receipt is the append-only audit record written when a payout batch is
// marked paid. The pending aggregation itself still derives from item paid
// flags; the receipt exists so a crash can never double-report a payout.
type Receipt struct {
	ID          string       `gorm:"primaryKey;size:26" json:"id"`
	ConsignerID snowflake.ID `gorm:"not null;index" json:"consigner_id"`
	Amount      int64        `gorm:"not null" json:"amount"`
	ItemCount   int          `gorm:"not null" json:"item_count"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
}

func (Receipt) TableName() string { return "payout_receipts" }

// MarkPaidResult reports what a mark-paid pass settled. A pass with nothing
// pending settles zero and writes no receipt.
type MarkPaidResult struct {
	ConsignerID snowflake.ID `json:"consigner_id"`
	Total       int64        `json:"total"`
	ItemCount   int          `json:"item_count"`
	Receipt     *Receipt     `json:"receipt,omitempty"`
}
