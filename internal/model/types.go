package model

import "time"

// -----------------------------------------------------------------------------
// Reference Types (read-only for the ingester, seeded externally)
// -----------------------------------------------------------------------------

// Item represents a catalog type from the static reference data.
type Item struct {
	ID            int64  // Primary key (upstream type_id)
	Name          string // Display name
	Published     bool   // Whether the item is published upstream
	MarketGroupID *int64 // Market group membership, nil if not marketable
}

// Tradeable reports whether the item is eligible for history/order ingestion.
// Only published items with a market-group assignment are tracked.
func (i Item) Tradeable() bool {
	return i.Published && i.MarketGroupID != nil
}

// -----------------------------------------------------------------------------
// Ingested Types
// -----------------------------------------------------------------------------

// HistoryRecord is one day of aggregated market history for an item in a
// region. Identified by (ItemID, RegionID, Date); inserted once, never
// updated in place.
type HistoryRecord struct {
	ItemID     int64
	RegionID   int64
	Date       time.Time // Day granularity, UTC midnight
	Lowest     float64
	Highest    float64
	Average    float64
	OrderCount int64
	Volume     int64
}

// MarketOrder is a single order-book entry. OrderID is the natural key for
// upsert; Issued/Price and the volume fields are set once at first sight.
// Active is the only mutable field: it flips to false when the order stops
// appearing in a full fetch for its region (upstream sends no close events,
// absence is the closure signal).
type MarketOrder struct {
	OrderID      int64
	ItemID       int64
	SystemID     int64
	LocationID   int64
	IsBuyOrder   bool
	Issued       time.Time
	Expiry       time.Time // Issued + duration days
	VolumeRemain int64
	VolumeTotal  int64
	MinVolume    int64
	Price        float64
	Active       bool
}
