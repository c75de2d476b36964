package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zinoono/evemarket/internal/model"
)

// publicationHour is the UTC time of day used to normalize history cursors.
// The upstream publishes the previous day's aggregate at 11:00 UTC.
const publicationHour = 11

// HistoryRepository persists daily market history rows.
type HistoryRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewHistoryRepository creates a HistoryRepository on the shared pool.
func NewHistoryRepository(db *pgxpool.Pool, logger *slog.Logger) *HistoryRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryRepository{db: db, logger: logger}
}

// LatestDates returns, for each item with stored history in the region, the
// maximum stored date normalized to the 11:00 UTC publication time. This is
// the cursor that drives the incremental-diff filter.
func (r *HistoryRepository) LatestDates(ctx context.Context, regionID int64) (map[int64]time.Time, error) {
	rows, err := r.db.Query(ctx, `
		SELECT item_id, MAX(date)
		FROM market_history
		WHERE region_id = $1
		GROUP BY item_id
	`, regionID)
	if err != nil {
		return nil, fmt.Errorf("query latest history dates: %w", err)
	}
	defer rows.Close()

	cursors := make(map[int64]time.Time)
	for rows.Next() {
		var itemID int64
		var date time.Time
		if err := rows.Scan(&itemID, &date); err != nil {
			return nil, fmt.Errorf("scan latest history date: %w", err)
		}
		cursors[itemID] = normalizeCursor(date)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read latest history dates: %w", err)
	}

	return cursors, nil
}

// normalizeCursor anchors a stored history date at the upstream publication
// time of day, in UTC.
func normalizeCursor(date time.Time) time.Time {
	d := date.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), publicationHour, 0, 0, 0, time.UTC)
}

// Insert writes all records in a single transaction with insert-ignore
// semantics on (item_id, region_id, date), so re-running after a partial
// failure never duplicates or overwrites a day. Returns the number of rows
// that were actually new.
func (r *HistoryRepository) Insert(ctx context.Context, records []model.HistoryRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin history insert: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(`
			INSERT INTO market_history (item_id, region_id, date, low_price, high_price, average_price, order_count, volume)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (item_id, region_id, date) DO NOTHING
		`, rec.ItemID, rec.RegionID, rec.Date, rec.Lowest, rec.Highest, rec.Average, rec.OrderCount, rec.Volume)
	}

	inserted, err := execBatch(ctx, tx, batch, len(records))
	if err != nil {
		return 0, fmt.Errorf("insert history rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit history insert: %w", err)
	}

	r.logger.Debug("inserted history rows",
		"rows", len(records),
		"inserted", inserted,
		"conflicts", len(records)-inserted,
	)

	return inserted, nil
}

// execBatch sends a queued batch over the transaction and counts the rows
// that were actually written (conflicts affect zero rows).
func execBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch, n int) (inserted int, err error) {
	results := tx.SendBatch(ctx, batch)

	for i := 0; i < n; i++ {
		ct, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, err
		}
		if ct.RowsAffected() > 0 {
			inserted++
		}
	}

	if err := results.Close(); err != nil {
		return 0, err
	}

	return inserted, nil
}
