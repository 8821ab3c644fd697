package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics exposes application-level instruments for the inventory ledger.
type Metrics struct {
	itemsCreated  metric.Int64Counter
	salesRecorded metric.Int64Counter
	payoutsMarked metric.Int64Counter
	payoutAmount  metric.Int64Counter
}

// New builds the ledger instruments on the configured meter provider.
func New(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter("stockroom/ledger")

	itemsCreated, err := meter.Int64Counter("stockroom_items_created_total",
		metric.WithDescription("Inventory items created, by ownership type"))
	if err != nil {
		return nil, err
	}
	salesRecorded, err := meter.Int64Counter("stockroom_sales_recorded_total",
		metric.WithDescription("Sales recorded, by platform"))
	if err != nil {
		return nil, err
	}
	payoutsMarked, err := meter.Int64Counter("stockroom_payouts_marked_total",
		metric.WithDescription("Consigner payout batches marked paid"))
	if err != nil {
		return nil, err
	}
	payoutAmount, err := meter.Int64Counter("stockroom_payout_amount_minor_units",
		metric.WithDescription("Total consigner payout amount marked paid, in minor units"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		itemsCreated:  itemsCreated,
		salesRecorded: salesRecorded,
		payoutsMarked: payoutsMarked,
		payoutAmount:  payoutAmount,
	}, nil
}

func (m *Metrics) ItemCreated(ctx context.Context, ownershipType string) {
	if m == nil {
		return
	}
	m.itemsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("ownership_type", ownershipType)))
}

func (m *Metrics) SaleRecorded(ctx context.Context, platform string) {
	if m == nil {
		return
	}
	m.salesRecorded.Add(ctx, 1, metric.WithAttributes(attribute.String("platform", platform)))
}

func (m *Metrics) PayoutMarked(ctx context.Context, amount int64) {
	if m == nil {
		return
	}
	m.payoutsMarked.Add(ctx, 1)
	m.payoutAmount.Add(ctx, amount)
}
