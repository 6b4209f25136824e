// Package stats derives streaks, lifetime totals, and achievement unlock
// state from the day record history. The persisted UserStats blob is an
// accelerator: every value in it is recomputable from the records, and
// Reconcile is the recovery path that proves it.
package stats

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dripline/dripline/internal/metrics"
	"github.com/dripline/dripline/internal/model"
	"github.com/dripline/dripline/internal/store"
)

// Aggregator maintains the derived stats blob in step with day record
// mutations.
type Aggregator struct {
	store    *store.Store
	logger   *slog.Logger
	recorder metrics.Recorder

	now func() time.Time
}

// NewAggregator wires a stats aggregator. A nil recorder falls back to noop.
func NewAggregator(st *store.Store, logger *slog.Logger, recorder metrics.Recorder) *Aggregator {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Aggregator{
		store:    st,
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
	}
}

// ApplyDayMutation folds one mutation of today's record into the stats blob.
// previousTotalML is the record's hydration total before the mutation; the
// streak advances only on the transition where the day newly meets its goal,
// so repeated adds past the goal do not double-count. Newly unlocked
// achievements are returned for the caller to surface.
func (a *Aggregator) ApplyDayMutation(record *model.DayRecord, previousTotalML float64) (*model.UserStats, []model.Achievement, error) {
	stats, err := a.store.Stats()
	if err != nil {
		return nil, nil, fmt.Errorf("load stats: %w", err)
	}

	stats.TotalConsumedML += record.TotalHydrationML - previousTotalML
	if stats.TotalConsumedML < 0 {
		stats.TotalConsumedML = 0
	}

	metNow := record.GoalMet()
	metBefore := record.GoalML > 0 && previousTotalML >= record.GoalML

	switch {
	case metNow && !metBefore:
		stats.CurrentStreak++
		stats.TotalDaysTracked++
		if stats.CurrentStreak > stats.LongestStreak {
			stats.LongestStreak = stats.CurrentStreak
		}
	case !metNow && metBefore:
		// A removal dropped today back under its goal; undo today's
		// contribution. LongestStreak stays, it is monotonic.
		if stats.CurrentStreak > 0 {
			stats.CurrentStreak--
		}
		if stats.TotalDaysTracked > 0 {
			stats.TotalDaysTracked--
		}
	}

	unlocked := evaluateAchievements(stats, a.now())

	if err := a.store.SaveStats(stats); err != nil {
		return nil, nil, fmt.Errorf("save stats: %w", err)
	}
	for _, achievement := range unlocked {
		a.logger.Info("achievement unlocked", "id", achievement.ID, "title", achievement.Title)
	}
	return stats, unlocked, nil
}

// evaluateAchievements recomputes progress for locked achievements and flips
// the ones whose requirement is now met. Unlocked achievements are never
// touched. Returns the newly unlocked ones.
func evaluateAchievements(stats *model.UserStats, now time.Time) []model.Achievement {
	var unlocked []model.Achievement
	for i := range stats.Achievements {
		achievement := &stats.Achievements[i]
		if achievement.Unlocked {
			continue
		}

		switch achievement.ID {
		case model.AchTotal10L, model.AchTotal100L:
			achievement.CurrentProgress = stats.TotalConsumedML
		default:
			achievement.CurrentProgress = float64(stats.CurrentStreak)
		}

		if achievement.CurrentProgress >= achievement.Requirement {
			achievement.Unlocked = true
			unlockedAt := now.UTC()
			achievement.UnlockedAt = &unlockedAt
			unlocked = append(unlocked, *achievement)
		}
	}
	return unlocked
}

// MergeBackend folds a stats snapshot pulled from the backend into the local
// blob. Counters and totals take the larger of the two values, achievement
// unlock state ratchets, and locally stamped unlock dates win over remote
// ones. The merged result is re-evaluated so higher totals can unlock
// achievements immediately.
func (a *Aggregator) MergeBackend(pulled *model.UserStats) (*model.UserStats, error) {
	stats, err := a.store.Stats()
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}

	if pulled.CurrentStreak > stats.CurrentStreak {
		stats.CurrentStreak = pulled.CurrentStreak
	}
	if pulled.LongestStreak > stats.LongestStreak {
		stats.LongestStreak = pulled.LongestStreak
	}
	if pulled.TotalDaysTracked > stats.TotalDaysTracked {
		stats.TotalDaysTracked = pulled.TotalDaysTracked
	}
	if pulled.TotalConsumedML > stats.TotalConsumedML {
		stats.TotalConsumedML = pulled.TotalConsumedML
	}
	if len(pulled.History) > 0 {
		stats.History = pulled.History
	}

	for _, remote := range pulled.Achievements {
		local := stats.Achievement(remote.ID)
		if local == nil || local.Unlocked || !remote.Unlocked {
			continue
		}
		local.Unlocked = true
		local.CurrentProgress = remote.CurrentProgress
		if remote.UnlockedAt != nil {
			unlockedAt := *remote.UnlockedAt
			local.UnlockedAt = &unlockedAt
		}
	}
	evaluateAchievements(stats, a.now())

	if err := a.store.SaveStats(stats); err != nil {
		return nil, fmt.Errorf("save stats: %w", err)
	}
	return stats, nil
}

// Reconcile recomputes the stats blob from the full day record set and
// replaces the accelerator when it has drifted. Unlock state and longest
// streak only ever ratchet upward.
func (a *Aggregator) Reconcile() (*model.UserStats, error) {
	stats, err := a.store.Stats()
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}
	records, err := a.store.AllDayRecords()
	if err != nil {
		return nil, fmt.Errorf("load day records: %w", err)
	}
	tz, err := a.store.Timezone()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	dates := make([]string, 0, len(records))
	for date := range records {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var (
		totalConsumed float64
		daysTracked   int
		longest       int
		run           int
		history       []model.DailySummary
	)
	previousDate := ""
	for _, date := range dates {
		record := records[date]
		totalConsumed += record.TotalHydrationML
		history = append(history, record.Summary(tz))

		if !record.GoalMet() {
			run = 0
			previousDate = date
			continue
		}

		daysTracked++
		if previousDate != "" && !consecutive(previousDate, date) {
			run = 0
		}
		run++
		if run > longest {
			longest = run
		}
		previousDate = date
	}

	// The current streak only survives up to today; a gap since the last
	// goal-met day breaks it.
	current := run
	if len(dates) > 0 {
		today := model.LocalDayKey(a.now(), tz)
		last := dates[len(dates)-1]
		if !records[last].GoalMet() || daysBetween(last, today) > 1 {
			current = 0
		}
	}

	rebuilt := &model.UserStats{
		CurrentStreak:    current,
		LongestStreak:    longest,
		TotalDaysTracked: daysTracked,
		TotalConsumedML:  totalConsumed,
		Achievements:     stats.Achievements,
		History:          history,
	}
	if stats.LongestStreak > rebuilt.LongestStreak {
		rebuilt.LongestStreak = stats.LongestStreak
	}
	evaluateAchievements(rebuilt, a.now())

	status := "clean"
	if drifted(stats, rebuilt) {
		status = "repaired"
		a.logger.Warn("stats accelerator drifted from day records",
			"stored_total_ml", stats.TotalConsumedML,
			"recomputed_total_ml", rebuilt.TotalConsumedML,
		)
	}
	a.recorder.IncStatsReconcile(status)

	if err := a.store.SaveStats(rebuilt); err != nil {
		return nil, fmt.Errorf("save stats: %w", err)
	}
	return rebuilt, nil
}

func drifted(stored, rebuilt *model.UserStats) bool {
	return stored.CurrentStreak != rebuilt.CurrentStreak ||
		stored.LongestStreak != rebuilt.LongestStreak ||
		stored.TotalDaysTracked != rebuilt.TotalDaysTracked ||
		stored.TotalConsumedML != rebuilt.TotalConsumedML
}

// consecutive reports whether two YYYY-MM-DD dates are adjacent days.
func consecutive(earlier, later string) bool {
	return daysBetween(earlier, later) == 1
}

func daysBetween(earlier, later string) int {
	a, errA := time.Parse(time.DateOnly, earlier)
	b, errB := time.Parse(time.DateOnly, later)
	if errA != nil || errB != nil {
		return -1
	}
	return int(b.Sub(a).Hours() / 24)
}
