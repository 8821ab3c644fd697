package domain

import (
	"context"
	"errors"
)

type CreateLocationRequest struct {
	Code        string
	Type        string
	Description string
}

type UpdateLocationRequest struct {
	Code        string
	Type        *string
	Description *string
}

// DeactivateResult reports how many non-deleted items still reference the
// location. Deactivation never cascade-moves them; the count lets the caller
// warn the operator.
type DeactivateResult struct {
	Location  Location `json:"location"`
	Occupants int64    `json:"occupants"`
}

type SuggestCodeRequest struct {
	Type        string
	Description string
}

type Service interface {
	Create(context.Context, CreateLocationRequest) (Location, error)
	Update(context.Context, UpdateLocationRequest) (Location, error)
	Deactivate(ctx context.Context, code string) (DeactivateResult, error)
	Find(ctx context.Context, query string) ([]Location, error)
	List(ctx context.Context, includeInactive bool) ([]Location, error)
	GetByCode(ctx context.Context, code string) (Location, error)
	SuggestCode(context.Context, SuggestCodeRequest) (string, error)
	Stats(ctx context.Context) ([]LocationStats, error)
}

var (
	ErrInvalidCode   = errors.New("invalid_location_code")
	ErrInvalidType   = errors.New("invalid_location_type")
	ErrDuplicateCode = errors.New("duplicate_location_code")
	ErrInactive      = errors.New("location_inactive")
	ErrNotFound      = errors.New("location_not_found")
)
