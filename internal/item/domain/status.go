package domain

import "fmt"

type Status string

const (
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
	StatusHeld      Status = "held"
	StatusDeleted   Status = "deleted"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusSold, StatusHeld, StatusDeleted:
		return true
	}
	return false
}

// Terminal reports whether an item in this status accepts no further
// transitions through the ordinary table. Sold items can still be corrected
// with an explicit reopen.
func (s Status) Terminal() bool {
	return s == StatusSold || s == StatusDeleted
}

var transitions = map[Status][]Status{
	StatusAvailable: {StatusSold, StatusHeld, StatusDeleted},
	StatusHeld:      {StatusAvailable, StatusSold, StatusDeleted},
	StatusSold:      {},
	StatusDeleted:   {},
}

// CanTransition reports whether the move from one status to another is
// allowed by the lifecycle table. Reopening a sale is not a table transition;
// it is a separate audited correction.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError reports a lifecycle move the table forbids.
type InvalidTransitionError struct {
	SKU  string
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("item %s cannot move from %s to %s", e.SKU, e.From, e.To)
}
