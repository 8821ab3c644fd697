package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/resaleops/stockroom/internal/catalog"
	"github.com/resaleops/stockroom/internal/clock"
	consignerdomain "github.com/resaleops/stockroom/internal/consigner/domain"
	"github.com/resaleops/stockroom/internal/item/domain"
	locationdomain "github.com/resaleops/stockroom/internal/location/domain"
	"github.com/resaleops/stockroom/internal/observability/metrics"
	"github.com/resaleops/stockroom/internal/sku"
	"github.com/resaleops/stockroom/pkg/db"
	"github.com/resaleops/stockroom/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const allocationRetries = 3

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          domain.Repository
	LocationRepo  locationdomain.Repository
	ConsignerRepo consignerdomain.Repository
	Allocator     *sku.Allocator
	Catalog       *catalog.Holder
	Metrics       *metrics.Metrics `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	repo          domain.Repository
	locationRepo  locationdomain.Repository
	consignerRepo consignerdomain.Repository
	allocator     *sku.Allocator
	catalog       *catalog.Holder
	metrics       *metrics.Metrics

	// createMu serializes SKU allocation within the process; the unique index
	// on items.sku plus a retry covers races across processes.
	createMu sync.Mutex
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("item.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		locationRepo:  p.LocationRepo,
		consignerRepo: p.ConsignerRepo,
		allocator:     p.Allocator,
		catalog:       p.Catalog,
		metrics:       p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateItemRequest) (domain.Item, error) {
	brand := strings.TrimSpace(req.Brand)
	if brand == "" {
		return domain.Item{}, domain.ErrInvalidBrand
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		return domain.Item{}, domain.ErrInvalidModel
	}
	condition := domain.Condition(strings.TrimSpace(req.Condition))
	if !condition.Valid() {
		return domain.Item{}, domain.ErrInvalidCondition
	}
	boxStatus := domain.BoxStatus(strings.ToLower(strings.TrimSpace(req.BoxStatus)))
	if !boxStatus.Valid() {
		return domain.Item{}, domain.ErrInvalidBoxStatus
	}
	if req.CurrentPrice < 0 || req.PurchasePrice < 0 {
		return domain.Item{}, domain.ErrInvalidPrice
	}

	ownership := domain.Ownership(strings.ToLower(strings.TrimSpace(req.OwnershipType)))
	if ownership == "" {
		ownership = domain.OwnershipOwned
	}
	if !ownership.Valid() {
		return domain.Item{}, domain.ErrInvalidOwnership
	}

	location, err := s.resolveLocation(ctx, req.LocationCode)
	if err != nil {
		return domain.Item{}, err
	}

	var consignerID *snowflake.ID
	var split *int
	switch ownership {
	case domain.OwnershipConsignment:
		consigner, err := s.resolveConsigner(ctx, req.ConsignerID)
		if err != nil {
			return domain.Item{}, err
		}
		consignerID = &consigner.ID
		pct := consigner.DefaultSplitPercentage
		if req.SplitPercentage != nil {
			pct = *req.SplitPercentage
		}
		if pct < 0 || pct > 100 {
			return domain.Item{}, domain.ErrInvalidSplit
		}
		split = &pct
	default:
		if strings.TrimSpace(req.ConsignerID) != "" {
			return domain.Item{}, domain.ErrConsignerForbidden
		}
	}

	item := domain.Item{
		ID:              s.genID.Generate(),
		Brand:           brand,
		Model:           model,
		Size:            strings.TrimSpace(req.Size),
		Color:           strings.TrimSpace(req.Color),
		Condition:       condition,
		BoxStatus:       boxStatus,
		CurrentPrice:    req.CurrentPrice,
		PurchasePrice:   req.PurchasePrice,
		Status:          domain.StatusAvailable,
		LocationID:      location.ID,
		OwnershipType:   ownership,
		ConsignerID:     consignerID,
		SplitPercentage: split,
		Notes:           strings.TrimSpace(req.Notes),
	}
	if req.Attributes != nil {
		item.Attributes = datatypes.JSONMap(req.Attributes)
	}

	err = s.insertWithSKU(ctx, &item, func(tx *gorm.DB) (string, error) {
		return s.allocator.Allocate(ctx, tx, brand)
	})
	if err != nil {
		return domain.Item{}, err
	}

	s.metrics.ItemCreated(ctx, string(ownership))
	s.log.Info("item created",
		zap.String("sku", item.SKU),
		zap.String("brand", item.Brand),
		zap.String("ownership_type", string(ownership)),
		zap.Int64("current_price", item.CurrentPrice),
	)
	return item, nil
}

func (s *Service) GetBySKU(ctx context.Context, skuCode string) (domain.Item, error) {
	item, err := s.mustFind(ctx, skuCode)
	if err != nil {
		return domain.Item{}, err
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateItemRequest) (domain.Item, error) {
	item, err := s.mustFind(ctx, req.SKU)
	if err != nil {
		return domain.Item{}, err
	}

	if req.Model != nil {
		model := strings.TrimSpace(*req.Model)
		if model == "" {
			return domain.Item{}, domain.ErrInvalidModel
		}
		item.Model = model
	}
	if req.Size != nil {
		item.Size = strings.TrimSpace(*req.Size)
	}
	if req.Color != nil {
		item.Color = strings.TrimSpace(*req.Color)
	}
	if req.Condition != nil {
		condition := domain.Condition(strings.TrimSpace(*req.Condition))
		if !condition.Valid() {
			return domain.Item{}, domain.ErrInvalidCondition
		}
		item.Condition = condition
	}
	if req.BoxStatus != nil {
		boxStatus := domain.BoxStatus(strings.ToLower(strings.TrimSpace(*req.BoxStatus)))
		if !boxStatus.Valid() {
			return domain.Item{}, domain.ErrInvalidBoxStatus
		}
		item.BoxStatus = boxStatus
	}
	if req.CurrentPrice != nil {
		if *req.CurrentPrice < 0 {
			return domain.Item{}, domain.ErrInvalidPrice
		}
		item.CurrentPrice = *req.CurrentPrice
	}
	if req.PurchasePrice != nil {
		if *req.PurchasePrice < 0 {
			return domain.Item{}, domain.ErrInvalidPrice
		}
		item.PurchasePrice = *req.PurchasePrice
	}
	if req.Notes != nil {
		item.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.Attributes != nil {
		item.Attributes = datatypes.JSONMap(req.Attributes)
	}

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Item{}, err
	}
	return *item, nil
}

// TransitionStatus applies the lifecycle table. Selling stores the price, the
// platform fee and the timestamp on the row, so payout aggregation later
// derives from recorded values rather than recomputing schedules.
func (s *Service) TransitionStatus(ctx context.Context, req domain.TransitionRequest) (domain.Item, error) {
	item, err := s.mustFind(ctx, req.SKU)
	if err != nil {
		return domain.Item{}, err
	}

	target := domain.Status(strings.ToLower(strings.TrimSpace(req.NewStatus)))
	if !target.Valid() {
		return domain.Item{}, domain.ErrInvalidStatus
	}
	if target == domain.StatusSold && item.Status == domain.StatusSold {
		return domain.Item{}, domain.ErrAlreadySold
	}
	if !domain.CanTransition(item.Status, target) {
		return domain.Item{}, &domain.InvalidTransitionError{SKU: item.SKU, From: item.Status, To: target}
	}

	from := item.Status
	switch target {
	case domain.StatusSold:
		if req.SoldPrice == nil {
			return domain.Item{}, domain.ErrSoldPriceRequired
		}
		if *req.SoldPrice < 0 {
			return domain.Item{}, domain.ErrInvalidPrice
		}
		platform := strings.ToLower(strings.TrimSpace(req.SoldPlatform))
		var fee int64
		switch {
		case req.FeeOverride != nil:
			// An explicit fee bypasses the schedule, so the platform need
			// not be a configured one.
			if *req.FeeOverride < 0 {
				return domain.Item{}, domain.ErrInvalidFee
			}
			fee = *req.FeeOverride
		case platform != "":
			schedule, ok := s.catalog.Get().FeeFor(platform)
			if !ok {
				return domain.Item{}, domain.ErrUnknownPlatform
			}
			fee = schedule.Apply(*req.SoldPrice)
		}
		now := s.clock.Now()
		price := *req.SoldPrice
		item.SoldPrice = &price
		item.SoldFee = &fee
		item.SoldPlatform = platform
		item.SoldDate = &now
		item.PayoutPaid = false
		item.HoldReason = ""
		if buyer := strings.TrimSpace(req.Buyer); buyer != "" {
			note := "buyer: " + buyer
			if item.Notes != "" {
				note = item.Notes + "\n" + note
			}
			item.Notes = note
		}
	case domain.StatusHeld:
		item.HoldReason = strings.TrimSpace(req.Reason)
	case domain.StatusAvailable:
		item.HoldReason = ""
	}
	item.Status = target

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Item{}, err
	}

	if target == domain.StatusSold {
		platform := item.SoldPlatform
		if platform == "" {
			platform = "store"
		}
		s.metrics.SaleRecorded(ctx, platform)
	}
	s.log.Info("item status changed",
		zap.String("sku", item.SKU),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
	)
	return *item, nil
}

// Reopen reverts a sale recorded in error: the only exit from sold. The prior
// sale is logged before the fields are cleared, and the correction is refused
// once the consigner payout has been paid.
func (s *Service) Reopen(ctx context.Context, req domain.ReopenRequest) (domain.Item, error) {
	item, err := s.mustFind(ctx, req.SKU)
	if err != nil {
		return domain.Item{}, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return domain.Item{}, domain.ErrReasonRequired
	}
	if item.Status != domain.StatusSold {
		return domain.Item{}, &domain.InvalidTransitionError{SKU: item.SKU, From: item.Status, To: domain.StatusAvailable}
	}
	if item.PayoutPaid {
		return domain.Item{}, domain.ErrPayoutAlreadyPaid
	}

	var soldPrice int64
	if item.SoldPrice != nil {
		soldPrice = *item.SoldPrice
	}
	s.log.Warn("sale reopened",
		zap.String("sku", item.SKU),
		zap.Int64("sold_price", soldPrice),
		zap.String("sold_platform", item.SoldPlatform),
		zap.String("reason", reason),
	)

	note := "reopened: " + reason
	if item.Notes != "" {
		note = item.Notes + "\n" + note
	}
	item.Notes = note
	item.Status = domain.StatusAvailable
	item.SoldPrice = nil
	item.SoldFee = nil
	item.SoldPlatform = ""
	item.SoldDate = nil
	item.PayoutPaid = false

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Item{}, err
	}
	return *item, nil
}

func (s *Service) Move(ctx context.Context, req domain.MoveRequest) (domain.Item, error) {
	item, err := s.mustFind(ctx, req.SKU)
	if err != nil {
		return domain.Item{}, err
	}
	location, err := s.resolveLocation(ctx, req.LocationCode)
	if err != nil {
		return domain.Item{}, err
	}

	item.LocationID = location.ID
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Item{}, err
	}
	s.log.Info("item moved",
		zap.String("sku", item.SKU),
		zap.String("location", location.Code),
	)
	return *item, nil
}

func (s *Service) RoundPrice(ctx context.Context, skuCode string) (domain.Item, error) {
	item, err := s.mustFind(ctx, skuCode)
	if err != nil {
		return domain.Item{}, err
	}

	rounded := domain.RoundUpPrice(item.CurrentPrice)
	if rounded == item.CurrentPrice {
		return *item, nil
	}
	item.CurrentPrice = rounded
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Item{}, err
	}
	return *item, nil
}

// CreateVariant registers another physical unit of an existing item under the
// base SKU with a "-N" suffix. Brand, model, ownership and split always come
// from the base; the rest defaults to the base but can be overridden.
func (s *Service) CreateVariant(ctx context.Context, req domain.CreateVariantRequest) (domain.Item, error) {
	base, err := s.mustFind(ctx, req.BaseSKU)
	if err != nil {
		return domain.Item{}, err
	}
	if base.Status == domain.StatusDeleted {
		return domain.Item{}, domain.ErrVariantBaseDeleted
	}

	condition := base.Condition
	if strings.TrimSpace(req.Condition) != "" {
		condition = domain.Condition(strings.TrimSpace(req.Condition))
		if !condition.Valid() {
			return domain.Item{}, domain.ErrInvalidCondition
		}
	}
	boxStatus := base.BoxStatus
	if strings.TrimSpace(req.BoxStatus) != "" {
		boxStatus = domain.BoxStatus(strings.ToLower(strings.TrimSpace(req.BoxStatus)))
		if !boxStatus.Valid() {
			return domain.Item{}, domain.ErrInvalidBoxStatus
		}
	}
	currentPrice := base.CurrentPrice
	if req.CurrentPrice != nil {
		if *req.CurrentPrice < 0 {
			return domain.Item{}, domain.ErrInvalidPrice
		}
		currentPrice = *req.CurrentPrice
	}
	purchasePrice := base.PurchasePrice
	if req.PurchasePrice != nil {
		if *req.PurchasePrice < 0 {
			return domain.Item{}, domain.ErrInvalidPrice
		}
		purchasePrice = *req.PurchasePrice
	}

	locationID := base.LocationID
	if strings.TrimSpace(req.LocationCode) != "" {
		location, err := s.resolveLocation(ctx, req.LocationCode)
		if err != nil {
			return domain.Item{}, err
		}
		locationID = location.ID
	}

	groupID := base.ID
	if base.VariantGroupID != nil {
		groupID = *base.VariantGroupID
	}

	size := base.Size
	if strings.TrimSpace(req.Size) != "" {
		size = strings.TrimSpace(req.Size)
	}
	color := base.Color
	if strings.TrimSpace(req.Color) != "" {
		color = strings.TrimSpace(req.Color)
	}

	item := domain.Item{
		ID:              s.genID.Generate(),
		Brand:           base.Brand,
		Model:           base.Model,
		Size:            size,
		Color:           color,
		Condition:       condition,
		BoxStatus:       boxStatus,
		CurrentPrice:    currentPrice,
		PurchasePrice:   purchasePrice,
		Status:          domain.StatusAvailable,
		LocationID:      locationID,
		OwnershipType:   base.OwnershipType,
		ConsignerID:     base.ConsignerID,
		SplitPercentage: base.SplitPercentage,
		VariantGroupID:  &groupID,
	}

	baseSKU := base.SKU
	err = s.insertWithSKU(ctx, &item, func(tx *gorm.DB) (string, error) {
		if base.VariantGroupID == nil {
			if err := tx.Model(&domain.Item{}).
				Where("id = ?", base.ID).
				Update("variant_group_id", groupID).Error; err != nil {
				return "", err
			}
		}
		return s.allocator.NextVariantSKU(ctx, tx, baseSKU)
	})
	if err != nil {
		return domain.Item{}, err
	}

	s.metrics.ItemCreated(ctx, string(item.OwnershipType))
	s.log.Info("variant created",
		zap.String("sku", item.SKU),
		zap.String("base_sku", baseSKU),
	)
	return item, nil
}

func (s *Service) Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResponse, error) {
	filter := domain.SearchFilter{
		Query:          req.Query,
		Brand:          strings.TrimSpace(req.Brand),
		Model:          strings.TrimSpace(req.Model),
		Size:           strings.TrimSpace(req.Size),
		Color:          strings.TrimSpace(req.Color),
		MinPrice:       req.MinPrice,
		MaxPrice:       req.MaxPrice,
		IncludeDeleted: req.IncludeDeleted,
	}

	if status := strings.ToLower(strings.TrimSpace(req.Status)); status != "" {
		parsed := domain.Status(status)
		if !parsed.Valid() {
			return domain.SearchResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = parsed
		if parsed == domain.StatusDeleted {
			filter.IncludeDeleted = true
		}
	}
	if ownership := strings.ToLower(strings.TrimSpace(req.OwnershipType)); ownership != "" {
		parsed := domain.Ownership(ownership)
		if !parsed.Valid() {
			return domain.SearchResponse{}, domain.ErrInvalidOwnership
		}
		filter.OwnershipType = parsed
	}
	if code := strings.TrimSpace(req.LocationCode); code != "" {
		location, err := s.resolveAnyLocation(ctx, code)
		if err != nil {
			return domain.SearchResponse{}, err
		}
		filter.LocationID = &location.ID
	}
	if id := strings.TrimSpace(req.ConsignerID); id != "" {
		parsed, err := snowflake.ParseString(id)
		if err != nil {
			return domain.SearchResponse{}, consignerdomain.ErrInvalidID
		}
		filter.ConsignerID = &parsed
	}

	page := req.Pagination.Clamp()

	rows, err := s.repo.Search(ctx, s.db, filter, page)
	if err != nil {
		return domain.SearchResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(rows, page.PageSize, func(item *domain.Item) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(rows) > page.PageSize {
		rows = rows[:page.PageSize]
	}

	items := make([]domain.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, *row)
	}
	return domain.SearchResponse{Items: items, PageInfo: pageInfo}, nil
}

// insertWithSKU runs allocation and insert in one transaction, serialized in
// process and retried on a duplicate key from a cross-process race.
func (s *Service) insertWithSKU(ctx context.Context, item *domain.Item, allocate func(tx *gorm.DB) (string, error)) error {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	var lastErr error
	for attempt := 0; attempt < allocationRetries; attempt++ {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			assigned, err := allocate(tx)
			if err != nil {
				return err
			}
			item.SKU = assigned
			return s.repo.Insert(ctx, tx, item)
		})
		if err == nil {
			return nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return err
		}
		lastErr = err
		s.log.Warn("sku collision, retrying allocation",
			zap.String("sku", item.SKU),
			zap.Int("attempt", attempt+1),
		)
	}
	return lastErr
}

func (s *Service) resolveLocation(ctx context.Context, code string) (*locationdomain.Location, error) {
	location, err := s.resolveAnyLocation(ctx, code)
	if err != nil {
		return nil, err
	}
	if !location.Active {
		return nil, locationdomain.ErrInactive
	}
	return location, nil
}

func (s *Service) resolveAnyLocation(ctx context.Context, code string) (*locationdomain.Location, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = strings.ToUpper(strings.TrimSpace(s.catalog.Get().Defaults.Location))
	}
	if code == "" {
		return nil, locationdomain.ErrNotFound
	}
	location, err := s.locationRepo.FindByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, locationdomain.ErrNotFound
	}
	return location, nil
}

func (s *Service) resolveConsigner(ctx context.Context, id string) (*consignerdomain.Consigner, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrConsignerRequired
	}
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return nil, consignerdomain.ErrInvalidID
	}
	consigner, err := s.consignerRepo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if consigner == nil {
		return nil, consignerdomain.ErrNotFound
	}
	return consigner, nil
}

func (s *Service) mustFind(ctx context.Context, skuCode string) (*domain.Item, error) {
	normalized := strings.ToUpper(strings.TrimSpace(skuCode))
	if !sku.Valid(normalized) {
		return nil, domain.ErrNotFound
	}
	item, err := s.repo.FindBySKU(ctx, s.db, normalized)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}
