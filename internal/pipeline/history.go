package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zinoono/evemarket/internal/esi"
	"github.com/zinoono/evemarket/internal/model"
)

// HistoryPipeline ingests the daily history delta for one region per run.
type HistoryPipeline struct {
	client    MarketClient
	history   HistoryStore
	items     ItemStore
	chunkSize int
	logger    *slog.Logger
	now       func() time.Time
}

// NewHistoryPipeline creates a HistoryPipeline. chunkSize bounds how many
// per-item fetches are grouped into one failure domain; actual request
// parallelism is bounded by the client's permit pool, not by chunkSize.
func NewHistoryPipeline(client MarketClient, history HistoryStore, items ItemStore, chunkSize int, logger *slog.Logger) *HistoryPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryPipeline{
		client:    client,
		history:   history,
		items:     items,
		chunkSize: chunkSize,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one history ingestion pass for the region.
//
// Candidates are the upstream's active type list intersected with the
// tradeable set, minus items whose cursor already covers the current market
// cutoff. Per-chunk failures are logged and skipped (those items simply
// retry next run), except a rate-limit signal, which aborts the whole run.
// Surviving rows are inserted in one idempotent transaction at the end.
func (p *HistoryPipeline) Run(ctx context.Context, regionID int64) error {
	start := time.Now()
	cutoff := MarketCutoff(p.now())

	cursors, err := p.history.LatestDates(ctx, regionID)
	if err != nil {
		return fmt.Errorf("history region %d: %w", regionID, err)
	}

	tradeable, err := p.items.TradeableIDs(ctx)
	if err != nil {
		return fmt.Errorf("history region %d: %w", regionID, err)
	}

	active, err := p.client.MarketRegionTypes(ctx, regionID)
	if err != nil {
		return fmt.Errorf("history region %d: %w", regionID, err)
	}

	candidates := make([]int64, 0, len(active))
	for _, id := range active {
		if _, ok := tradeable[id]; !ok {
			continue
		}
		if cursor, ok := cursors[id]; ok && !cursor.Before(cutoff) {
			continue
		}
		candidates = append(candidates, id)
	}

	p.logger.Debug("history candidates selected",
		"region", regionID,
		"active_types", len(active),
		"cursors", len(cursors),
		"candidates", len(candidates),
		"cutoff", cutoff,
	)

	chunks := chunkIDs(candidates, p.chunkSize)
	var records []model.HistoryRecord

	for i, chunk := range chunks {
		fetched, err := p.fetchChunk(ctx, regionID, chunk, cursors)
		if err != nil {
			if esi.IsRateLimited(err) {
				return fmt.Errorf("history region %d chunk %d/%d: %w", regionID, i+1, len(chunks), err)
			}
			// This chunk's items retry on the next scheduled run.
			p.logger.Warn("history chunk failed",
				"region", regionID,
				"chunk", i+1,
				"chunks", len(chunks),
				"err", err,
			)
			continue
		}

		records = append(records, fetched...)
		p.logger.Debug("history chunk collected",
			"region", regionID,
			"chunk", i+1,
			"chunks", len(chunks),
			"rows", len(fetched),
		)
	}

	inserted, err := p.history.Insert(ctx, records)
	if err != nil {
		return fmt.Errorf("history region %d: %w", regionID, err)
	}

	p.logger.Info("history run finished",
		"region", regionID,
		"candidates", len(candidates),
		"rows", len(records),
		"inserted", inserted,
		"duration", time.Since(start),
	)

	return nil
}

// fetchChunk fetches per-item histories concurrently and keeps only rows
// strictly newer than the item's cursor (no cursor keeps everything). Items
// that turn out unpublished are skipped, not failed.
func (p *HistoryPipeline) fetchChunk(ctx context.Context, regionID int64, ids []int64, cursors map[int64]time.Time) ([]model.HistoryRecord, error) {
	var mu sync.Mutex
	var out []model.HistoryRecord

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		g.Go(func() error {
			items, err := p.client.MarketRegionHistory(gctx, regionID, id)
			if err != nil {
				if esi.IsNotPublished(err) {
					p.logger.Debug("skipping unpublished item", "region", regionID, "item", id)
					return nil
				}
				return fmt.Errorf("item %d: %w", id, err)
			}

			cursor, hasCursor := cursors[id]
			recs := make([]model.HistoryRecord, 0, len(items))
			for _, it := range items {
				rec, err := it.ToRecord(id, regionID)
				if err != nil {
					return fmt.Errorf("item %d: %w", id, err)
				}
				if hasCursor && !rec.Date.After(cursor) {
					continue
				}
				recs = append(recs, rec)
			}

			mu.Lock()
			out = append(out, recs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// chunkIDs splits ids into chunks of at most size entries.
func chunkIDs(ids []int64, size int) [][]int64 {
	if size < 1 {
		size = 1
	}
	chunks := make([][]int64, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
