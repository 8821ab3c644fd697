package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Consigner is a third party whose items are sold on their behalf for a
// negotiated split of net proceeds. Phone is the disambiguator when several
// consigners share a name, and is unique.
type Consigner struct {
	ID                     snowflake.ID `gorm:"primaryKey" json:"id"`
	Name                   string       `gorm:"size:200;not null;index" json:"name"`
	Phone                  string       `gorm:"uniqueIndex;size:20;not null" json:"phone"`
	Email                  string       `gorm:"size:200" json:"email,omitempty"`
	DefaultSplitPercentage int          `gorm:"not null;default:70" json:"default_split_percentage"`
	CreatedAt              time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt              time.Time    `gorm:"not null" json:"updated_at"`
}

func (Consigner) TableName() string { return "consigners" }

// Statistics aggregates a consigner's items by lifecycle state.
type Statistics struct {
	Consigner         Consigner `json:"consigner"`
	TotalItems        int64     `json:"total_items"`
	AvailableItems    int64     `json:"available_items"`
	HeldItems         int64     `json:"held_items"`
	SoldItems         int64     `json:"sold_items"`
	TotalCurrentValue int64     `json:"total_current_value"`
	TotalSoldValue    int64     `json:"total_sold_value"`
	PendingPayout     int64     `json:"pending_payout"`
}

// UnpaidSale is one sold, not-yet-paid-out consignment item; the inputs the
// payout share derives from.
type UnpaidSale struct {
	SoldPrice       int64 `json:"sold_price"`
	SoldFee         int64 `json:"sold_fee"`
	SplitPercentage int   `json:"split_percentage"`
}
