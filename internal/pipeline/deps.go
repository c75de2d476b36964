package pipeline

import (
	"context"
	"time"

	"github.com/zinoono/evemarket/internal/esi"
	"github.com/zinoono/evemarket/internal/model"
)

// MarketClient is the slice of the ESI client the pipelines consume.
type MarketClient interface {
	MarketRegionTypes(ctx context.Context, regionID int64) ([]int64, error)
	MarketRegionHistory(ctx context.Context, regionID, typeID int64) ([]esi.MarketHistoryItem, error)
	MarketRegionOrders(ctx context.Context, regionID int64) ([]esi.MarketOrderItem, error)
}

// HistoryStore provides the diff-aware history persistence.
type HistoryStore interface {
	LatestDates(ctx context.Context, regionID int64) (map[int64]time.Time, error)
	Insert(ctx context.Context, records []model.HistoryRecord) (int, error)
}

// OrderStore provides order upsert and closure detection.
type OrderStore interface {
	InsertActive(ctx context.Context, orders []model.MarketOrder, batchSize int) (int, error)
	DeactivateMissing(ctx context.Context, regionID int64, seenIDs []int64) (int64, error)
}

// ItemStore provides the tradeable-item reference set.
type ItemStore interface {
	TradeableIDs(ctx context.Context) (map[int64]struct{}, error)
}
