package handler

import (
	"log/slog"
	"net/http"

	"github.com/dripline/dripline/internal/stats"
	"github.com/dripline/dripline/internal/store"
)

// StatsHandler serves derived stats and the reconcile recovery path.
type StatsHandler struct {
	agg    *stats.Aggregator
	store  *store.Store
	logger *slog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(agg *stats.Aggregator, st *store.Store, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		agg:    agg,
		store:  st,
		logger: logger,
	}
}

// Get handles GET /v1/stats.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userStats, err := h.store.Stats()
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}
	writeJSON(w, http.StatusOK, userStats)
}

// Reconcile handles POST /v1/stats/reconcile: recompute the stats blob from
// the full day record history and return the authoritative result.
func (h *StatsHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	userStats, err := h.agg.Reconcile()
	if err != nil {
		h.logger.Error("stats_reconcile_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("stats_reconciled",
		"current_streak", userStats.CurrentStreak,
		"total_consumed_ml", userStats.TotalConsumedML,
	)

	writeJSON(w, http.StatusOK, userStats)
}
