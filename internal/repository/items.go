package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ItemRepository reads the static item reference data. The ingester never
// writes it; the external seeding tool owns these tables.
type ItemRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewItemRepository creates an ItemRepository on the shared pool.
func NewItemRepository(db *pgxpool.Pool, logger *slog.Logger) *ItemRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemRepository{db: db, logger: logger}
}

// TradeableIDs returns the set of item IDs eligible for market ingestion:
// published items with a market-group assignment. Loaded fresh at the start
// of every pipeline run, never cached.
func (r *ItemRepository) TradeableIDs(ctx context.Context) (map[int64]struct{}, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id
		FROM eve_items
		WHERE published AND market_group_id IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("query tradeable items: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tradeable item id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read tradeable item ids: %w", err)
	}

	return ids, nil
}
