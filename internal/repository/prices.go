package repository

import (
	"context"
	"fmt"
	"time"
)

// Read queries over the ingested order books. They back the ops margins
// view and the aggregate tables served outside this process; they never
// mutate state.

// RegionSellPrices returns the lowest active sell price per item in the
// region.
func (r *OrderRepository) RegionSellPrices(ctx context.Context, regionID int64) (map[int64]float64, error) {
	return r.priceQuery(ctx, regionID, `
		SELECT item_id, MIN(price)
		FROM market_orders
		WHERE system_id IN (SELECT id FROM eve_system WHERE region_id = $1)
		  AND NOT buy_order AND active
		GROUP BY item_id
	`)
}

// RegionBuyPrices returns the highest active buy price per item in the
// region.
func (r *OrderRepository) RegionBuyPrices(ctx context.Context, regionID int64) (map[int64]float64, error) {
	return r.priceQuery(ctx, regionID, `
		SELECT item_id, MAX(price)
		FROM market_orders
		WHERE system_id IN (SELECT id FROM eve_system WHERE region_id = $1)
		  AND buy_order AND active
		GROUP BY item_id
	`)
}

func (r *OrderRepository) priceQuery(ctx context.Context, regionID int64, query string) (map[int64]float64, error) {
	rows, err := r.db.Query(ctx, query, regionID)
	if err != nil {
		return nil, fmt.Errorf("query region prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[int64]float64)
	for rows.Next() {
		var itemID int64
		var price float64
		if err := rows.Scan(&itemID, &price); err != nil {
			return nil, fmt.Errorf("scan region price: %w", err)
		}
		prices[itemID] = price
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read region prices: %w", err)
	}

	return prices, nil
}

// RegionBuyCompetition counts buy orders per item issued within the window,
// a proxy for how contested an item's buy side is.
func (r *OrderRepository) RegionBuyCompetition(ctx context.Context, regionID int64, window time.Duration) (map[int64]int64, error) {
	return r.competitionQuery(ctx, regionID, window, true)
}

// RegionSellCompetition counts sell orders per item issued within the window.
func (r *OrderRepository) RegionSellCompetition(ctx context.Context, regionID int64, window time.Duration) (map[int64]int64, error) {
	return r.competitionQuery(ctx, regionID, window, false)
}

func (r *OrderRepository) competitionQuery(ctx context.Context, regionID int64, window time.Duration, buy bool) (map[int64]int64, error) {
	since := time.Now().UTC().Add(-window)

	rows, err := r.db.Query(ctx, `
		SELECT item_id, COUNT(*)
		FROM market_orders
		WHERE system_id IN (SELECT id FROM eve_system WHERE region_id = $1)
		  AND buy_order = $2
		  AND issued > $3
		GROUP BY item_id
	`, regionID, buy, since)
	if err != nil {
		return nil, fmt.Errorf("query region competition: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int64)
	for rows.Next() {
		var itemID, n int64
		if err := rows.Scan(&itemID, &n); err != nil {
			return nil, fmt.Errorf("scan region competition: %w", err)
		}
		counts[itemID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read region competition: %w", err)
	}

	return counts, nil
}
