package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Condition string

const (
	ConditionDeadstock Condition = "DS"
	ConditionVNDS      Condition = "VNDS"
	ConditionUsed      Condition = "Used"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionDeadstock, ConditionVNDS, ConditionUsed:
		return true
	}
	return false
}

type BoxStatus string

const (
	BoxStatusBox     BoxStatus = "box"
	BoxStatusTag     BoxStatus = "tag"
	BoxStatusBoth    BoxStatus = "both"
	BoxStatusNeither BoxStatus = "neither"
)

func (b BoxStatus) Valid() bool {
	switch b {
	case BoxStatusBox, BoxStatusTag, BoxStatusBoth, BoxStatusNeither:
		return true
	}
	return false
}

type Ownership string

const (
	OwnershipOwned       Ownership = "owned"
	OwnershipConsignment Ownership = "consignment"
)

func (o Ownership) Valid() bool {
	return o == OwnershipOwned || o == OwnershipConsignment
}

// Item is one physical unit of stock. The SKU is assigned at creation and
// never changes; deletion is the terminal "deleted" state, the row stays.
type Item struct {
	ID              snowflake.ID       `gorm:"primaryKey" json:"id"`
	SKU             string             `gorm:"uniqueIndex;size:20;not null" json:"sku"`
	Brand           string             `gorm:"size:100;not null;index" json:"brand"`
	Model           string             `gorm:"size:200;not null" json:"model"`
	Size            string             `gorm:"size:50" json:"size,omitempty"`
	Color           string             `gorm:"size:100" json:"color,omitempty"`
	Condition       Condition          `gorm:"size:10;not null" json:"condition"`
	BoxStatus       BoxStatus          `gorm:"size:10;not null" json:"box_status"`
	CurrentPrice    int64              `gorm:"not null" json:"current_price"`
	PurchasePrice   int64              `gorm:"not null;default:0" json:"purchase_price"`
	Status          Status             `gorm:"size:10;not null;index" json:"status"`
	LocationID      snowflake.ID       `gorm:"not null;index" json:"location_id"`
	OwnershipType   Ownership          `gorm:"size:20;not null;default:owned" json:"ownership_type"`
	ConsignerID     *snowflake.ID      `gorm:"index" json:"consigner_id,omitempty"`
	SplitPercentage *int               `json:"split_percentage,omitempty"`
	SoldPrice       *int64             `json:"sold_price,omitempty"`
	SoldFee         *int64             `json:"sold_fee,omitempty"`
	SoldPlatform    string             `gorm:"size:50" json:"sold_platform,omitempty"`
	SoldDate        *time.Time         `json:"sold_date,omitempty"`
	PayoutPaid      bool               `gorm:"not null;default:false" json:"payout_paid"`
	VariantGroupID  *snowflake.ID      `gorm:"index" json:"variant_group_id,omitempty"`
	HoldReason      string             `gorm:"size:200" json:"hold_reason,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	Attributes      datatypes.JSONMap  `json:"attributes,omitempty"`
	// The timestamps are populated by gorm rather than a column default so
	// the stored precision matches the values bound by the cursor predicate.
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Item) TableName() string { return "items" }

// RoundUpPrice rounds a price up to the next multiple of the display step
// (5 whole units, i.e. 500 minor units). Prices already on the step are left
// alone; zero stays zero.
func RoundUpPrice(price int64) int64 {
	const step = 500
	if price <= 0 {
		return price
	}
	return ((price + step - 1) / step) * step
}
