package metrics

import "time"

// TeeRecorder forwards every event to all wrapped recorders.
type TeeRecorder struct {
	recorders []Recorder
}

// NewTee combines recorders into one. Nil entries are skipped.
func NewTee(recorders ...Recorder) *TeeRecorder {
	kept := make([]Recorder, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			kept = append(kept, r)
		}
	}
	return &TeeRecorder{recorders: kept}
}

func (t *TeeRecorder) IncDrinkLogged(drinkType string) {
	for _, r := range t.recorders {
		r.IncDrinkLogged(drinkType)
	}
}

func (t *TeeRecorder) IncDrinkRemoved() {
	for _, r := range t.recorders {
		r.IncDrinkRemoved()
	}
}

func (t *TeeRecorder) IncWeatherCacheHit() {
	for _, r := range t.recorders {
		r.IncWeatherCacheHit()
	}
}

func (t *TeeRecorder) IncWeatherCacheMiss() {
	for _, r := range t.recorders {
		r.IncWeatherCacheMiss()
	}
}

func (t *TeeRecorder) IncWeatherRefresh(status string) {
	for _, r := range t.recorders {
		r.IncWeatherRefresh(status)
	}
}

func (t *TeeRecorder) IncGoalRecompute() {
	for _, r := range t.recorders {
		r.IncGoalRecompute()
	}
}

func (t *TeeRecorder) IncStatsReconcile(status string) {
	for _, r := range t.recorders {
		r.IncStatsReconcile(status)
	}
}

func (t *TeeRecorder) IncSyncPush(status string) {
	for _, r := range t.recorders {
		r.IncSyncPush(status)
	}
}

func (t *TeeRecorder) IncSyncPull(status string) {
	for _, r := range t.recorders {
		r.IncSyncPull(status)
	}
}

func (t *TeeRecorder) ObserveSyncPushDuration(duration time.Duration) {
	for _, r := range t.recorders {
		r.ObserveSyncPushDuration(duration)
	}
}

func (t *TeeRecorder) SetSyncQueueDepth(depth int64) {
	for _, r := range t.recorders {
		r.SetSyncQueueDepth(depth)
	}
}
