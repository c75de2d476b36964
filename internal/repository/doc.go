// Package repository owns all persistence for the ingester.
//
// Writes are keyed by natural identifiers and idempotent:
//   - market_history: unique on (item_id, region_id, date), insert-ignore
//   - market_orders: unique on order_id, insert-ignore; only the active flag
//     mutates after first sight
//
// Reads are diff-aware (latest stored history date per item) so pipelines can
// skip data that is already covered. Reference tables (eve_items, eve_system)
// are seeded externally and read-only here.
package repository
