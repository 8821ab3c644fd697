package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/resaleops/stockroom/internal/catalog"
	"github.com/resaleops/stockroom/internal/consigner/domain"
	payoutdomain "github.com/resaleops/stockroom/internal/payout/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	phoneDigits  = regexp.MustCompile(`\D`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Catalog *catalog.Holder
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	catalog *catalog.Holder
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("consigner.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		catalog: p.Catalog,
	}
}

// FindOrCreate resolves a consigner by (name, phone). With a phone the lookup
// is exact; name-only lookups succeed only when exactly one consigner carries
// the name. Creation always requires a phone.
func (s *Service) FindOrCreate(ctx context.Context, req domain.FindOrCreateRequest) (domain.Consigner, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Consigner{}, domain.ErrInvalidName
	}

	phone, err := NormalizePhone(req.Phone)
	if err != nil {
		return domain.Consigner{}, err
	}

	if phone != "" {
		existing, err := s.repo.FindByPhone(ctx, s.db, phone)
		if err != nil {
			return domain.Consigner{}, err
		}
		if existing != nil {
			return *existing, nil
		}
	} else {
		matches, err := s.repo.FindByName(ctx, s.db, name)
		if err != nil {
			return domain.Consigner{}, err
		}
		switch len(matches) {
		case 0:
			// fall through to creation, which requires a phone
		case 1:
			return *matches[0], nil
		default:
			return domain.Consigner{}, &domain.AmbiguousMatchError{
				Name:       name,
				Candidates: deref(matches),
			}
		}
	}

	if phone == "" {
		return domain.Consigner{}, domain.ErrPhoneRequired
	}

	split := s.catalog.Get().Defaults.ConsignmentSplit
	if req.DefaultSplit != nil {
		split = *req.DefaultSplit
	}
	if split < 0 || split > 100 {
		return domain.Consigner{}, domain.ErrInvalidSplit
	}

	email := strings.TrimSpace(req.Email)
	if email != "" && !emailPattern.MatchString(email) {
		return domain.Consigner{}, domain.ErrInvalidEmail
	}

	consigner := domain.Consigner{
		ID:                     s.genID.Generate(),
		Name:                   name,
		Phone:                  phone,
		Email:                  email,
		DefaultSplitPercentage: split,
	}
	if err := s.repo.Insert(ctx, s.db, &consigner); err != nil {
		return domain.Consigner{}, err
	}

	s.log.Info("consigner created",
		zap.String("consigner_id", consigner.ID.String()),
		zap.String("name", consigner.Name),
		zap.Int("default_split", consigner.DefaultSplitPercentage),
	)
	return consigner, nil
}

func (s *Service) List(ctx context.Context, search string) ([]domain.Consigner, error) {
	rows, err := s.repo.Search(ctx, s.db, search)
	if err != nil {
		return nil, err
	}
	return deref(rows), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Consigner, error) {
	consigner, err := s.mustFind(ctx, id)
	if err != nil {
		return domain.Consigner{}, err
	}
	return *consigner, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateConsignerRequest) (domain.Consigner, error) {
	consigner, err := s.mustFind(ctx, req.ID)
	if err != nil {
		return domain.Consigner{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Consigner{}, domain.ErrInvalidName
		}
		consigner.Name = name
	}
	if req.Phone != nil {
		phone, err := NormalizePhone(*req.Phone)
		if err != nil {
			return domain.Consigner{}, err
		}
		if phone == "" {
			return domain.Consigner{}, domain.ErrPhoneRequired
		}
		consigner.Phone = phone
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != "" && !emailPattern.MatchString(email) {
			return domain.Consigner{}, domain.ErrInvalidEmail
		}
		consigner.Email = email
	}
	if req.DefaultSplit != nil {
		if *req.DefaultSplit < 0 || *req.DefaultSplit > 100 {
			return domain.Consigner{}, domain.ErrInvalidSplit
		}
		consigner.DefaultSplitPercentage = *req.DefaultSplit
	}

	if err := s.repo.Update(ctx, s.db, consigner); err != nil {
		return domain.Consigner{}, err
	}
	return *consigner, nil
}

// Statistics derives everything from stored item rows; pending payout shares
// use the fee and split captured at sale time, never a recomputation.
func (s *Service) Statistics(ctx context.Context, id string) (domain.Statistics, error) {
	consigner, err := s.mustFind(ctx, id)
	if err != nil {
		return domain.Statistics{}, err
	}

	counts, err := s.repo.StatusCounts(ctx, s.db, consigner.ID)
	if err != nil {
		return domain.Statistics{}, err
	}

	unpaid, err := s.repo.UnpaidSales(ctx, s.db, consigner.ID)
	if err != nil {
		return domain.Statistics{}, err
	}
	var pending int64
	for _, sale := range unpaid {
		pending += payoutdomain.ConsignerShare(sale.SoldPrice-sale.SoldFee, sale.SplitPercentage)
	}

	return domain.Statistics{
		Consigner:         *consigner,
		TotalItems:        counts.TotalItems,
		AvailableItems:    counts.AvailableItems,
		HeldItems:         counts.HeldItems,
		SoldItems:         counts.SoldItems,
		TotalCurrentValue: counts.TotalCurrentValue,
		TotalSoldValue:    counts.TotalSoldValue,
		PendingPayout:     pending,
	}, nil
}

// NormalizePhone reduces any input with ten digits (or eleven with a leading
// country code 1) to the canonical "(ddd) ddd-dddd" form. Empty input stays
// empty so optional phones pass through.
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	digits := phoneDigits.ReplaceAllString(raw, "")
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return "", domain.ErrInvalidPhone
	}
	return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:], nil
}

func (s *Service) mustFind(ctx context.Context, id string) (*domain.Consigner, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	consigner, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if consigner == nil {
		return nil, domain.ErrNotFound
	}
	return consigner, nil
}

func deref(rows []*domain.Consigner) []domain.Consigner {
	consigners := make([]domain.Consigner, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		consigners = append(consigners, *row)
	}
	return consigners
}
