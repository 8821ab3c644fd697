package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// LocationType categorizes where stock physically sits.
type LocationType string

const (
	TypeStoreFloor LocationType = "store-floor"
	TypeWarehouse  LocationType = "warehouse"
	TypeStorage    LocationType = "storage"
	TypeHome       LocationType = "home"
	TypeOther      LocationType = "other"
)

func (t LocationType) Valid() bool {
	switch t {
	case TypeStoreFloor, TypeWarehouse, TypeStorage, TypeHome, TypeOther:
		return true
	default:
		return false
	}
}

// Location is a named storage slot. Code is immutable once created; a
// deactivated location keeps its occupants but blocks new assignment.
type Location struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Code        string       `gorm:"uniqueIndex;size:50;not null" json:"code"`
	Type        LocationType `gorm:"size:20;not null" json:"type"`
	Description string       `json:"description,omitempty"`
	// Active carries no column default: gorm would omit a false value on
	// insert and let the default flip it back to true.
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Location) TableName() string { return "locations" }

// LocationStats reports occupancy for one active location.
type LocationStats struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	ItemCount   int64  `json:"item_count"`
}
