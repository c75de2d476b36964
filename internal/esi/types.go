package esi

import "time"

// MarketHistoryItem mirrors one entry of GET /markets/{region}/history/.
// Dates arrive as "YYYY-MM-DD" day strings; see ToRecord.
type MarketHistoryItem struct {
	Average    float64 `json:"average"`
	Date       string  `json:"date"`
	Highest    float64 `json:"highest"`
	Lowest     float64 `json:"lowest"`
	OrderCount int64   `json:"order_count"`
	Volume     int64   `json:"volume"`
}

// MarketOrderItem mirrors one entry of GET /markets/{region}/orders/.
type MarketOrderItem struct {
	Duration     int64     `json:"duration"` // Days until expiry, from issue
	IsBuyOrder   bool      `json:"is_buy_order"`
	Issued       time.Time `json:"issued"`
	LocationID   int64     `json:"location_id"`
	MinVolume    int64     `json:"min_volume"`
	OrderID      int64     `json:"order_id"`
	Price        float64   `json:"price"`
	Range        string    `json:"range"` // station, region, solarsystem or a jump count
	SystemID     int64     `json:"system_id"`
	TypeID       int64     `json:"type_id"`
	VolumeRemain int64     `json:"volume_remain"`
	VolumeTotal  int64     `json:"volume_total"`
}

// universeType mirrors GET /universe/types/{id}/.
type universeType struct {
	Name      string `json:"name"`
	Published bool   `json:"published"`
}
