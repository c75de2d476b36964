package esi

import (
	"context"
	"fmt"
)

// MarketRegionTypes returns the item IDs that currently have market activity
// in the region. Paginated; cross-page order is insignificant.
func (c *Client) MarketRegionTypes(ctx context.Context, regionID int64) ([]int64, error) {
	return getPaginated[int64](ctx, c, fmt.Sprintf("/markets/%d/types/", regionID))
}

// MarketRegionOrders returns the full current order book for the region.
// Paginated; the book is always fetched whole, never per item.
func (c *Client) MarketRegionOrders(ctx context.Context, regionID int64) ([]MarketOrderItem, error) {
	return getPaginated[MarketOrderItem](ctx, c, fmt.Sprintf("/markets/%d/orders/", regionID))
}

// MarketRegionHistory returns the daily aggregates for one item in a region.
// Not paginated. With the publish check enabled, an unpublished item yields a
// NotPublished error, which callers treat as "skip".
func (c *Client) MarketRegionHistory(ctx context.Context, regionID, typeID int64) ([]MarketHistoryItem, error) {
	if c.publishCheck {
		published, err := c.IsPublished(ctx, typeID)
		if err != nil {
			return nil, err
		}
		if !published {
			return nil, &Error{Kind: KindNotPublished, Path: fmt.Sprintf("/universe/types/%d/", typeID)}
		}
	}

	var items []MarketHistoryItem
	path := fmt.Sprintf("/markets/%d/history/?type_id=%d", regionID, typeID)
	if err := c.get(ctx, path, &items); err != nil {
		return nil, err
	}

	return items, nil
}

// IsPublished reports whether the item is still published upstream.
func (c *Client) IsPublished(ctx context.Context, typeID int64) (bool, error) {
	var resp universeType
	if err := c.get(ctx, fmt.Sprintf("/universe/types/%d/", typeID), &resp); err != nil {
		return false, err
	}
	return resp.Published, nil
}
