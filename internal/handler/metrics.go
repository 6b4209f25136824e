package handler

import (
	"fmt"
	"net/http"

	"github.com/dripline/dripline/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "dripline_drinks_logged_total %d\n", snap.DrinksLogged)
	writeMetric(w, "dripline_drinks_removed_total %d\n", snap.DrinksRemoved)

	writeMetric(w, "dripline_weather_cache_hits_total %d\n", snap.WeatherCacheHits)
	writeMetric(w, "dripline_weather_cache_misses_total %d\n", snap.WeatherCacheMisses)
	writeMetric(w, "dripline_weather_refreshes_total %d\n", snap.WeatherRefreshes)

	writeMetric(w, "dripline_goal_recomputes_total %d\n", snap.GoalRecomputes)
	writeMetric(w, "dripline_stats_reconciles_total %d\n", snap.StatsReconciles)

	writeMetric(w, "dripline_sync_pushes_total{status=\"success\"} %d\n", snap.SyncPushSuccesses)
	writeMetric(w, "dripline_sync_pushes_total{status=\"failed\"} %d\n", snap.SyncPushFailures)
	writeMetric(w, "dripline_sync_pushes_total{status=\"dropped\"} %d\n", snap.SyncPushDrops)
	writeMetric(w, "dripline_sync_pulls_total %d\n", snap.SyncPulls)

	writeMetric(w, "dripline_sync_push_duration_seconds_count %d\n", snap.SyncPushObservation)
	writeMetric(w, "dripline_sync_push_duration_seconds_sum %.6f\n", float64(snap.SyncPushDurationNs)/1e9)
	writeMetric(w, "dripline_sync_queue_depth %d\n", snap.SyncQueueDepth)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
