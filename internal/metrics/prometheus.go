package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exposes the Recorder events as Prometheus metrics.
type PrometheusRecorder struct {
	drinksLogged     *prometheus.CounterVec
	drinksRemoved    prometheus.Counter
	weatherCache     *prometheus.CounterVec
	weatherRefreshes *prometheus.CounterVec
	goalRecomputes   prometheus.Counter
	statsReconciles  *prometheus.CounterVec
	syncPushes       *prometheus.CounterVec
	syncPulls        *prometheus.CounterVec
	syncPushDuration prometheus.Histogram
	syncQueueDepth   prometheus.Gauge
}

// NewPrometheus creates a PrometheusRecorder and registers its collectors
// with the given registerer.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		drinksLogged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dripline_drinks_logged_total",
			Help: "Total drink events logged, by drink type",
		}, []string{"type"}),
		drinksRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dripline_drinks_removed_total",
			Help: "Total drink events removed",
		}),
		weatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dripline_weather_cache_requests_total",
			Help: "Weather cache lookups, by outcome",
		}, []string{"outcome"}),
		weatherRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dripline_weather_refreshes_total",
			Help: "Weather refresh attempts, by status",
		}, []string{"status"}),
		goalRecomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dripline_goal_recomputes_total",
			Help: "Daily goal recomputations",
		}),
		statsReconciles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dripline_stats_reconciles_total",
			Help: "Full-history stats reconciliations, by result",
		}, []string{"result"}),
		syncPushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dripline_sync_pushes_total",
			Help: "Best-effort remote pushes, by status",
		}, []string{"status"}),
		syncPulls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dripline_sync_pulls_total",
			Help: "Remote pulls, by status",
		}, []string{"status"}),
		syncPushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dripline_sync_push_duration_seconds",
			Help:    "Duration of remote push attempts",
			Buckets: prometheus.DefBuckets,
		}),
		syncQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dripline_sync_queue_depth",
			Help: "Pending entries in the outbound push queue",
		}),
	}

	reg.MustRegister(
		r.drinksLogged,
		r.drinksRemoved,
		r.weatherCache,
		r.weatherRefreshes,
		r.goalRecomputes,
		r.statsReconciles,
		r.syncPushes,
		r.syncPulls,
		r.syncPushDuration,
		r.syncQueueDepth,
	)
	return r
}

// IncDrinkLogged increments the drinks-logged counter.
func (r *PrometheusRecorder) IncDrinkLogged(drinkType string) {
	r.drinksLogged.WithLabelValues(drinkType).Inc()
}

// IncDrinkRemoved increments the drinks-removed counter.
func (r *PrometheusRecorder) IncDrinkRemoved() {
	r.drinksRemoved.Inc()
}

// IncWeatherCacheHit increments the cache hit counter.
func (r *PrometheusRecorder) IncWeatherCacheHit() {
	r.weatherCache.WithLabelValues("hit").Inc()
}

// IncWeatherCacheMiss increments the cache miss counter.
func (r *PrometheusRecorder) IncWeatherCacheMiss() {
	r.weatherCache.WithLabelValues("miss").Inc()
}

// IncWeatherRefresh increments the refresh counter for a status.
func (r *PrometheusRecorder) IncWeatherRefresh(status string) {
	r.weatherRefreshes.WithLabelValues(status).Inc()
}

// IncGoalRecompute increments the goal recompute counter.
func (r *PrometheusRecorder) IncGoalRecompute() {
	r.goalRecomputes.Inc()
}

// IncStatsReconcile increments the reconcile counter for a result.
func (r *PrometheusRecorder) IncStatsReconcile(status string) {
	r.statsReconciles.WithLabelValues(status).Inc()
}

// IncSyncPush increments the push counter for a status.
func (r *PrometheusRecorder) IncSyncPush(status string) {
	r.syncPushes.WithLabelValues(status).Inc()
}

// IncSyncPull increments the pull counter for a status.
func (r *PrometheusRecorder) IncSyncPull(status string) {
	r.syncPulls.WithLabelValues(status).Inc()
}

// ObserveSyncPushDuration records a push duration.
func (r *PrometheusRecorder) ObserveSyncPushDuration(duration time.Duration) {
	r.syncPushDuration.Observe(duration.Seconds())
}

// SetSyncQueueDepth records the pending push queue depth.
func (r *PrometheusRecorder) SetSyncQueueDepth(depth int64) {
	r.syncQueueDepth.Set(float64(depth))
}
