package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zinoono/evemarket/internal/model"
)

// OrderPipeline ingests the full order book for one region per run.
type OrderPipeline struct {
	client    MarketClient
	orders    OrderStore
	items     ItemStore
	batchSize int
	logger    *slog.Logger
}

// NewOrderPipeline creates an OrderPipeline. batchSize is the number of rows
// per upsert transaction.
func NewOrderPipeline(client MarketClient, orders OrderStore, items ItemStore, batchSize int, logger *slog.Logger) *OrderPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderPipeline{
		client:    client,
		orders:    orders,
		items:     items,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run executes one order ingestion pass for the region: fetch the whole
// book, keep tradeable items, upsert in batches, then flip active off on
// every order the fetch no longer contains. The closure update must not run
// unless every upsert batch committed, otherwise orders still being inserted
// would be deactivated.
func (p *OrderPipeline) Run(ctx context.Context, regionID int64) error {
	start := time.Now()

	tradeable, err := p.items.TradeableIDs(ctx)
	if err != nil {
		return fmt.Errorf("orders region %d: %w", regionID, err)
	}

	fetched, err := p.client.MarketRegionOrders(ctx, regionID)
	if err != nil {
		return fmt.Errorf("orders region %d: %w", regionID, err)
	}

	orders := make([]model.MarketOrder, 0, len(fetched))
	seen := make([]int64, 0, len(fetched))
	for _, item := range fetched {
		if _, ok := tradeable[item.TypeID]; !ok {
			continue
		}
		orders = append(orders, item.ToOrder())
		seen = append(seen, item.OrderID)
	}

	inserted, err := p.orders.InsertActive(ctx, orders, p.batchSize)
	if err != nil {
		return fmt.Errorf("orders region %d: %w", regionID, err)
	}

	closed, err := p.orders.DeactivateMissing(ctx, regionID, seen)
	if err != nil {
		return fmt.Errorf("orders region %d: %w", regionID, err)
	}

	p.logger.Info("order run finished",
		"region", regionID,
		"fetched", len(fetched),
		"tradeable", len(orders),
		"inserted", inserted,
		"closed", closed,
		"duration", time.Since(start),
	)

	return nil
}
