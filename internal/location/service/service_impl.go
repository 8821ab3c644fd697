package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/resaleops/stockroom/internal/location/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9_-]{1,50}$`)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("location.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateLocationRequest) (domain.Location, error) {
	code := normalizeCode(req.Code)
	if !codePattern.MatchString(code) {
		return domain.Location{}, domain.ErrInvalidCode
	}

	locationType := domain.LocationType(strings.ToLower(strings.TrimSpace(req.Type)))
	if locationType == "" {
		locationType = domain.TypeOther
	}
	if !locationType.Valid() {
		return domain.Location{}, domain.ErrInvalidType
	}

	existing, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.Location{}, err
	}
	if existing != nil {
		return domain.Location{}, domain.ErrDuplicateCode
	}

	location := domain.Location{
		ID:          s.genID.Generate(),
		Code:        code,
		Type:        locationType,
		Description: strings.TrimSpace(req.Description),
		Active:      true,
	}
	if err := s.repo.Insert(ctx, s.db, &location); err != nil {
		return domain.Location{}, err
	}

	s.log.Info("location created",
		zap.String("code", location.Code),
		zap.String("type", string(location.Type)),
	)
	return location, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateLocationRequest) (domain.Location, error) {
	location, err := s.mustFind(ctx, req.Code)
	if err != nil {
		return domain.Location{}, err
	}

	if req.Type != nil {
		locationType := domain.LocationType(strings.ToLower(strings.TrimSpace(*req.Type)))
		if !locationType.Valid() {
			return domain.Location{}, domain.ErrInvalidType
		}
		location.Type = locationType
	}
	if req.Description != nil {
		location.Description = strings.TrimSpace(*req.Description)
	}

	if err := s.repo.Update(ctx, s.db, location); err != nil {
		return domain.Location{}, err
	}
	return *location, nil
}

// Deactivate blocks future assignment to the location. Items already placed
// there keep their reference; the occupant count is returned so the caller
// can warn.
func (s *Service) Deactivate(ctx context.Context, code string) (domain.DeactivateResult, error) {
	location, err := s.mustFind(ctx, code)
	if err != nil {
		return domain.DeactivateResult{}, err
	}

	occupants, err := s.repo.CountOccupants(ctx, s.db, location.ID)
	if err != nil {
		return domain.DeactivateResult{}, err
	}

	location.Active = false
	if err := s.repo.Update(ctx, s.db, location); err != nil {
		return domain.DeactivateResult{}, err
	}

	s.log.Info("location deactivated",
		zap.String("code", location.Code),
		zap.Int64("occupants", occupants),
	)
	return domain.DeactivateResult{Location: *location, Occupants: occupants}, nil
}

func (s *Service) Find(ctx context.Context, query string) ([]domain.Location, error) {
	return s.search(ctx, query, false)
}

func (s *Service) List(ctx context.Context, includeInactive bool) ([]domain.Location, error) {
	rows, err := s.repo.Search(ctx, s.db, "", includeInactive)
	if err != nil {
		return nil, err
	}
	return deref(rows), nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (domain.Location, error) {
	location, err := s.mustFind(ctx, code)
	if err != nil {
		return domain.Location{}, err
	}
	return *location, nil
}

func (s *Service) Stats(ctx context.Context) ([]domain.LocationStats, error) {
	return s.repo.Stats(ctx, s.db)
}

// SuggestCode derives a free code from the type and description. It is a
// hint for the operator; nothing enforces that the suggestion is used.
func (s *Service) SuggestCode(ctx context.Context, req domain.SuggestCodeRequest) (string, error) {
	base := suggestBase(req.Type, req.Description)

	candidate := base
	for n := 1; ; n++ {
		existing, err := s.repo.FindByCode(ctx, s.db, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%02d", base, n)
	}
}

func suggestBase(locationType, description string) string {
	typeToken := strings.ToUpper(slug.Make(locationType))
	typeToken = strings.ReplaceAll(typeToken, "-", "")
	if typeToken == "" {
		typeToken = "GENERAL"
	}
	if len(typeToken) > 4 {
		typeToken = typeToken[:4]
	}

	if description == "" {
		return typeToken
	}
	descToken := strings.ToUpper(slug.Make(description))
	descToken = strings.ReplaceAll(descToken, "-", "")
	if descToken == "" {
		return typeToken
	}
	if len(descToken) > 3 {
		descToken = descToken[:3]
	}
	return typeToken + "-" + descToken
}

func (s *Service) search(ctx context.Context, query string, includeInactive bool) ([]domain.Location, error) {
	rows, err := s.repo.Search(ctx, s.db, query, includeInactive)
	if err != nil {
		return nil, err
	}
	return deref(rows), nil
}

func (s *Service) mustFind(ctx context.Context, code string) (*domain.Location, error) {
	location, err := s.repo.FindByCode(ctx, s.db, normalizeCode(code))
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, domain.ErrNotFound
	}
	return location, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func deref(rows []*domain.Location) []domain.Location {
	locations := make([]domain.Location, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		locations = append(locations, *row)
	}
	return locations
}
