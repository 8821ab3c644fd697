package domain

import (
	"context"
	"errors"
	"fmt"
)

type FindOrCreateRequest struct {
	Name         string
	Phone        string
	Email        string
	DefaultSplit *int
}

type UpdateConsignerRequest struct {
	ID           string
	Name         *string
	Phone        *string
	Email        *string
	DefaultSplit *int
}

type Service interface {
	FindOrCreate(context.Context, FindOrCreateRequest) (Consigner, error)
	List(ctx context.Context, search string) ([]Consigner, error)
	GetByID(ctx context.Context, id string) (Consigner, error)
	Update(context.Context, UpdateConsignerRequest) (Consigner, error)
	Statistics(ctx context.Context, id string) (Statistics, error)
}

var (
	ErrNotFound      = errors.New("consigner_not_found")
	ErrInvalidID     = errors.New("invalid_consigner_id")
	ErrInvalidName   = errors.New("invalid_consigner_name")
	ErrInvalidPhone  = errors.New("invalid_consigner_phone")
	ErrInvalidEmail  = errors.New("invalid_consigner_email")
	ErrInvalidSplit  = errors.New("invalid_split_percentage")
	ErrPhoneRequired = errors.New("consigner_phone_required")
)

// AmbiguousMatchError is returned when a name-only lookup matches more than
// one consigner; the caller must retry with a phone number.
type AmbiguousMatchError struct {
	Name       string
	Candidates []Consigner
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("multiple consigners named %q, phone required to disambiguate", e.Name)
}
