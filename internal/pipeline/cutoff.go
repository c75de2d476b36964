package pipeline

import "time"

// publicationHour is the UTC hour at which the upstream publishes the
// previous day's aggregates.
const publicationHour = 11

// MarketCutoff returns the newest history timestamp that can exist upstream
// at the given instant. Before 11:00 UTC, yesterday's aggregate is not out
// yet, so the cutoff falls back one more day. An item whose cursor already
// meets or exceeds this has nothing new to fetch.
func MarketCutoff(now time.Time) time.Time {
	now = now.UTC()

	daysBack := -1
	if now.Hour() < publicationHour {
		daysBack = -2
	}

	d := now.AddDate(0, 0, daysBack)
	return time.Date(d.Year(), d.Month(), d.Day(), publicationHour, 0, 0, 0, time.UTC)
}
