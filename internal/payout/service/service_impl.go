package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/resaleops/stockroom/internal/catalog"
	"github.com/resaleops/stockroom/internal/clock"
	consignerdomain "github.com/resaleops/stockroom/internal/consigner/domain"
	itemdomain "github.com/resaleops/stockroom/internal/item/domain"
	"github.com/resaleops/stockroom/internal/observability/metrics"
	"github.com/resaleops/stockroom/internal/payout/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	Repo          domain.Repository
	ConsignerRepo consignerdomain.Repository
	Items         itemdomain.Service
	Catalog       *catalog.Holder
	Metrics       *metrics.Metrics `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	clock         clock.Clock
	repo          domain.Repository
	consignerRepo consignerdomain.Repository
	items         itemdomain.Service
	catalog       *catalog.Holder
	metrics       *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("payout.service"),
		clock:         p.Clock,
		repo:          p.Repo,
		consignerRepo: p.ConsignerRepo,
		items:         p.Items,
		catalog:       p.Catalog,
		metrics:       p.Metrics,
	}
}

// RecordSale moves the item to sold and returns the money breakdown. The item
// service stores price, fee and timestamp on the row; the breakdown here is
// derived from those stored values.
func (s *Service) RecordSale(ctx context.Context, req domain.RecordSaleRequest) (domain.SaleResult, error) {
	if req.SalePrice != nil && *req.SalePrice < 0 {
		return domain.SaleResult{}, domain.ErrInvalidSalePrice
	}

	item, err := s.items.TransitionStatus(ctx, itemdomain.TransitionRequest{
		SKU:          req.SKU,
		NewStatus:    string(itemdomain.StatusSold),
		SoldPrice:    req.SalePrice,
		SoldPlatform: req.Platform,
		FeeOverride:  req.FeeOverride,
		Buyer:        req.Buyer,
	})
	if err != nil {
		return domain.SaleResult{}, err
	}

	return domain.SaleResult{
		Item:      item,
		Breakdown: breakdownFor(item),
	}, nil
}

// Quote previews a breakdown without touching inventory.
func (s *Service) Quote(ctx context.Context, req domain.QuoteRequest) (domain.Breakdown, error) {
	if req.SalePrice < 0 {
		return domain.Breakdown{}, domain.ErrInvalidSalePrice
	}

	var fee int64
	if platform := strings.ToLower(strings.TrimSpace(req.Platform)); platform != "" {
		schedule, ok := s.catalog.Get().FeeFor(platform)
		if !ok {
			return domain.Breakdown{}, itemdomain.ErrUnknownPlatform
		}
		fee = schedule.Apply(req.SalePrice)
	}

	net := req.SalePrice - fee
	breakdown := domain.Breakdown{
		SalePrice:   req.SalePrice,
		Fee:         fee,
		NetProceeds: net,
		NetToStore:  net,
	}
	if req.SplitPercentage != nil {
		split := *req.SplitPercentage
		if split < 0 || split > 100 {
			return domain.Breakdown{}, domain.ErrInvalidSplit
		}
		breakdown.NetToStore, breakdown.NetToConsigner = domain.SplitProceeds(net, split)
	}
	return breakdown, nil
}

func (s *Service) Pending(ctx context.Context, consignerID string) (domain.PendingPayout, error) {
	consigner, err := s.mustFindConsigner(ctx, consignerID)
	if err != nil {
		return domain.PendingPayout{}, err
	}

	items, err := s.repo.UnpaidItems(ctx, s.db, consigner.ID)
	if err != nil {
		return domain.PendingPayout{}, err
	}
	return buildPending(consigner.ID, items), nil
}

// MarkPaid settles every pending item for a consigner in one transaction:
// the paid flags flip and the receipt is written together, so a crash leaves
// either a fully settled batch or nothing. Nothing pending is a no-op with a
// zero total and no receipt.
func (s *Service) MarkPaid(ctx context.Context, consignerID string) (domain.MarkPaidResult, error) {
	consigner, err := s.mustFindConsigner(ctx, consignerID)
	if err != nil {
		return domain.MarkPaidResult{}, err
	}

	result := domain.MarkPaidResult{ConsignerID: consigner.ID}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		items, err := s.repo.UnpaidItems(ctx, tx, consigner.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}

		pending := buildPending(consigner.ID, items)
		ids := make([]snowflake.ID, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ID)
		}
		if err := s.repo.MarkItemsPaid(ctx, tx, ids); err != nil {
			return err
		}

		now := s.clock.Now()
		receipt := domain.Receipt{
			ID:          ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
			ConsignerID: consigner.ID,
			Amount:      pending.Total,
			ItemCount:   len(items),
			CreatedAt:   now,
		}
		if err := s.repo.InsertReceipt(ctx, tx, &receipt); err != nil {
			return err
		}

		result.Total = pending.Total
		result.ItemCount = len(items)
		result.Receipt = &receipt
		return nil
	})
	if err != nil {
		return domain.MarkPaidResult{}, err
	}

	if result.Receipt != nil {
		s.metrics.PayoutMarked(ctx, result.Total)
		s.log.Info("payout marked paid",
			zap.String("consigner_id", consigner.ID.String()),
			zap.String("receipt_id", result.Receipt.ID),
			zap.Int64("amount", result.Total),
			zap.Int("item_count", result.ItemCount),
		)
	}
	return result, nil
}

func (s *Service) Receipts(ctx context.Context, consignerID string) ([]domain.Receipt, error) {
	consigner, err := s.mustFindConsigner(ctx, consignerID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListReceipts(ctx, s.db, consigner.ID)
}

func buildPending(consignerID snowflake.ID, items []*itemdomain.Item) domain.PendingPayout {
	pending := domain.PendingPayout{
		ConsignerID: consignerID,
		Items:       make([]domain.PendingItem, 0, len(items)),
	}
	for _, item := range items {
		_, share, err := domain.PayoutShares(*item)
		if err != nil {
			// the unpaid query only returns consignment rows
			continue
		}
		var price, fee int64
		if item.SoldPrice != nil {
			price = *item.SoldPrice
		}
		if item.SoldFee != nil {
			fee = *item.SoldFee
		}
		split := 0
		if item.SplitPercentage != nil {
			split = *item.SplitPercentage
		}
		pending.Items = append(pending.Items, domain.PendingItem{
			SKU:             item.SKU,
			Brand:           item.Brand,
			Model:           item.Model,
			SoldPrice:       price,
			SoldFee:         fee,
			SplitPercentage: split,
			Share:           share,
			SoldDate:        item.SoldDate,
		})
		pending.Total += share
	}
	return pending
}

func breakdownFor(item itemdomain.Item) domain.Breakdown {
	var price, fee int64
	if item.SoldPrice != nil {
		price = *item.SoldPrice
	}
	if item.SoldFee != nil {
		fee = *item.SoldFee
	}
	net := price - fee

	breakdown := domain.Breakdown{
		SalePrice:   price,
		Fee:         fee,
		NetProceeds: net,
		NetToStore:  net,
	}
	if store, consigner, err := domain.PayoutShares(item); err == nil {
		breakdown.NetToStore, breakdown.NetToConsigner = store, consigner
	}
	return breakdown
}

func (s *Service) mustFindConsigner(ctx context.Context, id string) (*consignerdomain.Consigner, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
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
