package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncDrinkLogged is a no-op.
func (n *NoopRecorder) IncDrinkLogged(drinkType string) {}

// IncDrinkRemoved is a no-op.
func (n *NoopRecorder) IncDrinkRemoved() {}

// IncWeatherCacheHit is a no-op.
func (n *NoopRecorder) IncWeatherCacheHit() {}

// IncWeatherCacheMiss is a no-op.
func (n *NoopRecorder) IncWeatherCacheMiss() {}

// IncWeatherRefresh is a no-op.
func (n *NoopRecorder) IncWeatherRefresh(status string) {}

// IncGoalRecompute is a no-op.
func (n *NoopRecorder) IncGoalRecompute() {}

// IncStatsReconcile is a no-op.
func (n *NoopRecorder) IncStatsReconcile(status string) {}

// IncSyncPush is a no-op.
func (n *NoopRecorder) IncSyncPush(status string) {}

// IncSyncPull is a no-op.
func (n *NoopRecorder) IncSyncPull(status string) {}

// ObserveSyncPushDuration is a no-op.
func (n *NoopRecorder) ObserveSyncPushDuration(duration time.Duration) {}

// SetSyncQueueDepth is a no-op.
func (n *NoopRecorder) SetSyncQueueDepth(depth int64) {}
