// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Ledger metrics
	IncDrinkLogged(drinkType string)
	IncDrinkRemoved()

	// Weather cache metrics
	IncWeatherCacheHit()
	IncWeatherCacheMiss()
	IncWeatherRefresh(status string) // status: "success", "failed", "rate_limited"

	// Goal engine metrics
	IncGoalRecompute()

	// Stats aggregator metrics
	IncStatsReconcile(status string) // status: "clean" or "repaired"

	// Remote sync metrics
	IncSyncPush(status string) // status: "success", "failed", "dropped"
	IncSyncPull(status string) // status: "success", "failed"
	ObserveSyncPushDuration(duration time.Duration)
	SetSyncQueueDepth(depth int64)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
