package esi

import (
	"fmt"
	"time"

	"github.com/zinoono/evemarket/internal/model"
)

// historyDateLayout is the day format used by the history endpoint.
const historyDateLayout = "2006-01-02"

// ToRecord converts a history item to a model.HistoryRecord for the given
// item and region. The date is anchored at UTC midnight.
func (h MarketHistoryItem) ToRecord(itemID, regionID int64) (model.HistoryRecord, error) {
	date, err := time.ParseInLocation(historyDateLayout, h.Date, time.UTC)
	if err != nil {
		return model.HistoryRecord{}, fmt.Errorf("parse history date %q: %w", h.Date, err)
	}

	return model.HistoryRecord{
		ItemID:     itemID,
		RegionID:   regionID,
		Date:       date,
		Lowest:     h.Lowest,
		Highest:    h.Highest,
		Average:    h.Average,
		OrderCount: h.OrderCount,
		Volume:     h.Volume,
	}, nil
}

// ToOrder converts an order-book entry to a model.MarketOrder. Expiry is
// derived as issued + duration days. Orders from a fetch are active by
// definition: they appeared in the most recent full book.
func (o MarketOrderItem) ToOrder() model.MarketOrder {
	return model.MarketOrder{
		OrderID:      o.OrderID,
		ItemID:       o.TypeID,
		SystemID:     o.SystemID,
		LocationID:   o.LocationID,
		IsBuyOrder:   o.IsBuyOrder,
		Issued:       o.Issued,
		Expiry:       o.Issued.AddDate(0, 0, int(o.Duration)),
		VolumeRemain: o.VolumeRemain,
		VolumeTotal:  o.VolumeTotal,
		MinVolume:    o.MinVolume,
		Price:        o.Price,
		Active:       true,
	}
}
