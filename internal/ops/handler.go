// Package ops exposes the process's operational HTTP surface: a health
// check over the database and task set, and a debug view of the margin
// read queries. It serves operators, not market consumers.
package ops

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/zinoono/evemarket/internal/task"
	"github.com/zinoono/evemarket/internal/version"
)

// competitionWindow bounds the issued-recently count behind the
// competition columns of the margins view.
const competitionWindow = 5 * time.Minute

// marginLimit caps the rows the debug endpoint returns.
const marginLimit = 100

// Pinger is the database liveness slice the health check consumes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PriceReader is the margin read-query slice of the order repository.
type PriceReader interface {
	RegionSellPrices(ctx context.Context, regionID int64) (map[int64]float64, error)
	RegionBuyPrices(ctx context.Context, regionID int64) (map[int64]float64, error)
	RegionBuyCompetition(ctx context.Context, regionID int64, window time.Duration) (map[int64]int64, error)
	RegionSellCompetition(ctx context.Context, regionID int64, window time.Duration) (map[int64]int64, error)
}

// NewHandler builds the ops HTTP handler.
func NewHandler(db Pinger, prices PriceReader, tasks []*task.RegionTask, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler(db, tasks))
	mux.HandleFunc("/debug/margins", marginsHandler(prices, logger))
	return mux
}

func healthHandler(db Pinger, tasks []*task.RegionTask) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		type taskState struct {
			Region  int64  `json:"region"`
			Kind    string `json:"kind"`
			Running bool   `json:"running"`
		}

		health := struct {
			Status   string                 `json:"status"`
			Version  string                 `json:"version"`
			Database map[string]interface{} `json:"database"`
			Tasks    []taskState            `json:"tasks"`
		}{
			Status:  "healthy",
			Version: version.String(),
		}

		if err := db.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Database = map[string]interface{}{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Database = map[string]interface{}{"status": "connected"}
		}

		for _, t := range tasks {
			health.Tasks = append(health.Tasks, taskState{
				Region:  t.RegionID(),
				Kind:    string(t.Kind()),
				Running: t.Running(),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	}
}

// marginRow is one item's buy/sell spread in a region. Rows exist only for
// items quoted on both sides.
type marginRow struct {
	ItemID          int64   `json:"item_id"`
	SellMin         float64 `json:"sell_min"`
	BuyMax          float64 `json:"buy_max"`
	Margin          float64 `json:"margin"`
	BuyCompetition  int64   `json:"buy_competition"`
	SellCompetition int64   `json:"sell_competition"`
}

func marginsHandler(prices PriceReader, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		regionID, err := strconv.ParseInt(r.URL.Query().Get("region"), 10, 64)
		if err != nil || regionID <= 0 {
			http.Error(w, "region query parameter required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		sell, err := prices.RegionSellPrices(ctx, regionID)
		if err != nil {
			serveMarginError(w, logger, regionID, err)
			return
		}
		buy, err := prices.RegionBuyPrices(ctx, regionID)
		if err != nil {
			serveMarginError(w, logger, regionID, err)
			return
		}
		buyComp, err := prices.RegionBuyCompetition(ctx, regionID, competitionWindow)
		if err != nil {
			serveMarginError(w, logger, regionID, err)
			return
		}
		sellComp, err := prices.RegionSellCompetition(ctx, regionID, competitionWindow)
		if err != nil {
			serveMarginError(w, logger, regionID, err)
			return
		}

		rows := make([]marginRow, 0, len(sell))
		for itemID, sellMin := range sell {
			buyMax, ok := buy[itemID]
			if !ok {
				continue
			}
			rows = append(rows, marginRow{
				ItemID:          itemID,
				SellMin:         sellMin,
				BuyMax:          buyMax,
				Margin:          sellMin - buyMax,
				BuyCompetition:  buyComp[itemID],
				SellCompetition: sellComp[itemID],
			})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Margin > rows[j].Margin })

		total := len(rows)
		if len(rows) > marginLimit {
			rows = rows[:marginLimit]
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"region":  regionID,
			"count":   total,
			"showing": len(rows),
			"margins": rows,
		})
	}
}

func serveMarginError(w http.ResponseWriter, logger *slog.Logger, regionID int64, err error) {
	logger.Error("margin query failed", "region", regionID, "error", err)
	http.Error(w, "margin query failed", http.StatusInternalServerError)
}
