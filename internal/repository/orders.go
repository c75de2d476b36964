package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zinoono/evemarket/internal/model"
)

// OrderRepository persists the per-region order books.
type OrderRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewOrderRepository creates an OrderRepository on the shared pool.
func NewOrderRepository(db *pgxpool.Pool, logger *slog.Logger) *OrderRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderRepository{db: db, logger: logger}
}

// InsertActive upserts fetched orders in fixed-size batches, each batch in
// its own transaction. An already-known order is left untouched (fields like
// issued and price are set once, at first sight). A failed batch aborts only
// its own transaction; earlier batches stay committed and the book self-heals
// on the next run. Returns the number of rows that were actually new.
func (r *OrderRepository) InsertActive(ctx context.Context, orders []model.MarketOrder, batchSize int) (int, error) {
	inserted := 0

	for i, chunk := range chunkOrders(orders, batchSize) {
		n, err := r.insertBatch(ctx, chunk)
		if err != nil {
			return inserted, fmt.Errorf("order batch %d: %w", i, err)
		}
		inserted += n
	}

	r.logger.Debug("upserted orders",
		"rows", len(orders),
		"inserted", inserted,
		"known", len(orders)-inserted,
	)

	return inserted, nil
}

// insertBatch writes one batch inside its own transaction.
func (r *OrderRepository) insertBatch(ctx context.Context, orders []model.MarketOrder) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, o := range orders {
		batch.Queue(`
			INSERT INTO market_orders (order_id, item_id, system_id, location_id, buy_order, issued, expiry, volume_remain, volume_total, min_volume, price, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (order_id) DO NOTHING
		`, o.OrderID, o.ItemID, o.SystemID, o.LocationID, o.IsBuyOrder, o.Issued, o.Expiry,
			o.VolumeRemain, o.VolumeTotal, o.MinVolume, o.Price, o.Active)
	}

	inserted, err := execBatch(ctx, tx, batch, len(orders))
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	return inserted, nil
}

// DeactivateMissing flips active to false on every order scoped to the
// region's systems that did not appear in this run's fetch. Absence from a
// full fetch is the only closure signal the upstream provides. Must run only
// after all upsert batches have committed. Returns the number of closed rows.
func (r *OrderRepository) DeactivateMissing(ctx context.Context, regionID int64, seenIDs []int64) (int64, error) {
	ct, err := r.db.Exec(ctx, `
		UPDATE market_orders
		SET active = FALSE
		WHERE active
		  AND NOT (order_id = ANY($1))
		  AND system_id IN (SELECT id FROM eve_system WHERE region_id = $2)
	`, seenIDs, regionID)
	if err != nil {
		return 0, fmt.Errorf("deactivate missing orders: %w", err)
	}

	return ct.RowsAffected(), nil
}

// chunkOrders splits orders into batches of at most size rows.
func chunkOrders(orders []model.MarketOrder, size int) [][]model.MarketOrder {
	if size < 1 {
		size = 1
	}
	chunks := make([][]model.MarketOrder, 0, (len(orders)+size-1)/size)
	for start := 0; start < len(orders); start += size {
		end := start + size
		if end > len(orders) {
			end = len(orders)
		}
		chunks = append(chunks, orders[start:end])
	}
	return chunks
}
