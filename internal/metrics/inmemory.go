package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	DrinksLogged        uint64
	DrinksRemoved       uint64
	WeatherCacheHits    uint64
	WeatherCacheMisses  uint64
	WeatherRefreshes    uint64
	GoalRecomputes      uint64
	StatsReconciles     uint64
	SyncPushSuccesses   uint64
	SyncPushFailures    uint64
	SyncPushDrops       uint64
	SyncPulls           uint64
	SyncPushDurationNs  int64
	SyncPushObservation uint64
	SyncQueueDepth      int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	drinksLogged        uint64
	drinksRemoved       uint64
	weatherCacheHits    uint64
	weatherCacheMisses  uint64
	weatherRefreshes    uint64
	goalRecomputes      uint64
	statsReconciles     uint64
	syncPushSuccesses   uint64
	syncPushFailures    uint64
	syncPushDrops       uint64
	syncPulls           uint64
	syncPushDurationNs  int64
	syncPushObservation uint64
	syncQueueDepth      int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		DrinksLogged:        atomic.LoadUint64(&m.drinksLogged),
		DrinksRemoved:       atomic.LoadUint64(&m.drinksRemoved),
		WeatherCacheHits:    atomic.LoadUint64(&m.weatherCacheHits),
		WeatherCacheMisses:  atomic.LoadUint64(&m.weatherCacheMisses),
		WeatherRefreshes:    atomic.LoadUint64(&m.weatherRefreshes),
		GoalRecomputes:      atomic.LoadUint64(&m.goalRecomputes),
		StatsReconciles:     atomic.LoadUint64(&m.statsReconciles),
		SyncPushSuccesses:   atomic.LoadUint64(&m.syncPushSuccesses),
		SyncPushFailures:    atomic.LoadUint64(&m.syncPushFailures),
		SyncPushDrops:       atomic.LoadUint64(&m.syncPushDrops),
		SyncPulls:           atomic.LoadUint64(&m.syncPulls),
		SyncPushDurationNs:  atomic.LoadInt64(&m.syncPushDurationNs),
		SyncPushObservation: atomic.LoadUint64(&m.syncPushObservation),
		SyncQueueDepth:      atomic.LoadInt64(&m.syncQueueDepth),
	}
}

// IncDrinkLogged increments the drinks-logged counter.
func (m *InMemoryRecorder) IncDrinkLogged(drinkType string) {
	atomic.AddUint64(&m.drinksLogged, 1)
}

// IncDrinkRemoved increments the drinks-removed counter.
func (m *InMemoryRecorder) IncDrinkRemoved() {
	atomic.AddUint64(&m.drinksRemoved, 1)
}

// IncWeatherCacheHit increments the cache hit counter.
func (m *InMemoryRecorder) IncWeatherCacheHit() {
	atomic.AddUint64(&m.weatherCacheHits, 1)
}

// IncWeatherCacheMiss increments the cache miss counter.
func (m *InMemoryRecorder) IncWeatherCacheMiss() {
	atomic.AddUint64(&m.weatherCacheMisses, 1)
}

// IncWeatherRefresh increments the refresh counter.
func (m *InMemoryRecorder) IncWeatherRefresh(status string) {
	atomic.AddUint64(&m.weatherRefreshes, 1)
}

// IncGoalRecompute increments the goal recompute counter.
func (m *InMemoryRecorder) IncGoalRecompute() {
	atomic.AddUint64(&m.goalRecomputes, 1)
}

// IncStatsReconcile increments the reconcile counter.
func (m *InMemoryRecorder) IncStatsReconcile(status string) {
	atomic.AddUint64(&m.statsReconciles, 1)
}

// IncSyncPush increments the push counter for a status.
func (m *InMemoryRecorder) IncSyncPush(status string) {
	switch status {
	case "success":
		atomic.AddUint64(&m.syncPushSuccesses, 1)
	case "dropped":
		atomic.AddUint64(&m.syncPushDrops, 1)
	default:
		atomic.AddUint64(&m.syncPushFailures, 1)
	}
}

// IncSyncPull increments the pull counter.
func (m *InMemoryRecorder) IncSyncPull(status string) {
	atomic.AddUint64(&m.syncPulls, 1)
}

// ObserveSyncPushDuration records a push duration.
func (m *InMemoryRecorder) ObserveSyncPushDuration(duration time.Duration) {
	atomic.AddUint64(&m.syncPushObservation, 1)
	atomic.AddInt64(&m.syncPushDurationNs, duration.Nanoseconds())
}

// SetSyncQueueDepth records the pending push queue depth.
func (m *InMemoryRecorder) SetSyncQueueDepth(depth int64) {
	atomic.StoreInt64(&m.syncQueueDepth, depth)
}
