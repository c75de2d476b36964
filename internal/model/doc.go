// Package model defines the core domain types shared across the ingester.
//
// Naming follows the upstream ESI vocabulary:
//   - Item: a catalog type (published items with a market group are tradeable)
//   - HistoryRecord: one day of aggregated market history per item per region
//   - MarketOrder: a single order-book entry, keyed by its upstream order ID
//
// Solar systems scope orders to a region, but only inside SQL; no Go type
// mirrors the eve_system table.
package model
