// Package goal computes the recommended daily hydration goal from the user
// profile, static climate, and live weather, and keeps recent day records
// aligned with it.
package goal

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dripline/dripline/internal/metrics"
	"github.com/dripline/dripline/internal/model"
	"github.com/dripline/dripline/internal/store"
	"github.com/dripline/dripline/internal/weather"
)

// Formula constants.
const (
	// BaseMLPerKg is the baseline intake per kilogram of body weight.
	BaseMLPerKg = 35.0

	// ElderlyAge is the age above which the elderly adjustment applies.
	ElderlyAge = 65

	// ElderlyMultiplier compensates for the reduced thirst response in
	// older adults.
	ElderlyMultiplier = 1.1

	// RetroactiveDays is how far back recomputation reaches when profile or
	// weather inputs change.
	RetroactiveDays = 7
)

// WeatherSource supplies goal multipliers derived from cached weather. The
// boolean return is false when no usable observation exists for the query.
type WeatherSource interface {
	CurrentMultiplier() (float64, bool)
	ForDate(date string) (*model.WeatherSnapshot, bool)
}

// Recommended computes the recommended goal in mL for a profile. When
// weatherMultiplier is nil the profile's static climate multiplier is used.
// The result is rounded to the nearest 100 mL.
func Recommended(profile model.UserProfile, weatherMultiplier *float64) float64 {
	base := profile.WeightKg * BaseMLPerKg

	if m, ok := model.ActivityMultipliers[profile.ActivityLevel]; ok {
		base *= m
	}

	if weatherMultiplier != nil {
		base *= *weatherMultiplier
	} else if m, ok := model.ClimateMultipliers[profile.Climate]; ok {
		base *= m
	}

	if profile.Age > ElderlyAge {
		base *= ElderlyMultiplier
	}

	return roundTo100(base)
}

func roundTo100(ml float64) float64 {
	if ml <= 0 {
		return 0
	}
	return float64(int((ml+50)/100)) * 100
}

// Engine resolves the effective daily goal, honoring the custom-goal
// override and the weather-adjustment preference.
type Engine struct {
	store    *store.Store
	weather  WeatherSource
	logger   *slog.Logger
	recorder metrics.Recorder

	now func() time.Time
}

// NewEngine wires a goal engine. weather may be nil when no weather service
// is configured; recorder falls back to noop.
func NewEngine(st *store.Store, weather WeatherSource, logger *slog.Logger, recorder metrics.Recorder) *Engine {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Engine{
		store:    st,
		weather:  weather,
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
	}
}

// ForToday returns the effective goal in mL for the current day. Custom mode
// returns the stored override; recommended mode computes from the profile,
// preferring the live weather multiplier when enabled and cached.
func (e *Engine) ForToday() (float64, error) {
	mode, err := e.store.GoalMode()
	if err != nil {
		return 0, fmt.Errorf("load goal mode: %w", err)
	}
	if mode == model.GoalModeCustom {
		return e.store.DailyGoal()
	}

	profile, err := e.store.Profile()
	if err != nil {
		return 0, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return store.DefaultGoalML, nil
	}

	return Recommended(*profile, e.currentWeatherMultiplier()), nil
}

// ForDate returns the effective goal in mL for a YYYY-MM-DD date, using the
// cached forecast for that date when available.
func (e *Engine) ForDate(date string) (float64, error) {
	mode, err := e.store.GoalMode()
	if err != nil {
		return 0, fmt.Errorf("load goal mode: %w", err)
	}
	if mode == model.GoalModeCustom {
		return e.store.DailyGoal()
	}

	profile, err := e.store.Profile()
	if err != nil {
		return 0, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return store.DefaultGoalML, nil
	}

	return Recommended(*profile, e.dateWeatherMultiplier(date)), nil
}

// SetCustomGoal stores a manual goal override and switches to custom mode.
func (e *Engine) SetCustomGoal(goalML float64) error {
	if goalML <= 0 {
		return fmt.Errorf("custom goal must be positive, got %v", goalML)
	}
	if err := e.store.SaveDailyGoal(goalML); err != nil {
		return fmt.Errorf("save custom goal: %w", err)
	}
	return e.store.SaveGoalMode(model.GoalModeCustom)
}

// UseRecommended switches back to the computed goal and persists today's
// value so stale overrides do not linger.
func (e *Engine) UseRecommended() error {
	if err := e.store.SaveGoalMode(model.GoalModeRecommended); err != nil {
		return fmt.Errorf("save goal mode: %w", err)
	}
	goalML, err := e.ForToday()
	if err != nil {
		return err
	}
	return e.store.SaveDailyGoal(goalML)
}

// RecomputeRecent re-derives the goal for the trailing RetroactiveDays day
// records. Called when the profile, climate, or weather inputs change. Days
// whose goal was set per-day by the user keep their value only in custom
// mode; in recommended mode every stored record is realigned.
func (e *Engine) RecomputeRecent() error {
	mode, err := e.store.GoalMode()
	if err != nil {
		return fmt.Errorf("load goal mode: %w", err)
	}
	if mode == model.GoalModeCustom {
		return nil
	}

	tz, err := e.store.Timezone()
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	now := e.now()
	updated := 0
	for i := 0; i < RetroactiveDays; i++ {
		date := model.LocalDayKey(now.AddDate(0, 0, -i), tz)

		record, err := e.store.GetDayRecord(date)
		if err != nil {
			return fmt.Errorf("load day record %s: %w", date, err)
		}
		if record == nil {
			continue
		}

		goalML, err := e.ForDate(date)
		if err != nil {
			return err
		}
		if record.GoalML == goalML {
			continue
		}

		record.GoalML = goalML
		if err := e.store.SaveDayRecord(record); err != nil {
			return fmt.Errorf("save day record %s: %w", date, err)
		}
		updated++
	}

	e.recorder.IncGoalRecompute()
	if updated > 0 {
		e.logger.Debug("recomputed recent goals", "days_updated", updated)
	}
	return nil
}

func (e *Engine) currentWeatherMultiplier() *float64 {
	if e.weather == nil {
		return nil
	}
	enabled, err := e.store.WeatherAdjustmentEnabled()
	if err != nil || !enabled {
		return nil
	}
	multiplier, ok := e.weather.CurrentMultiplier()
	if !ok {
		return nil
	}
	return &multiplier
}

func (e *Engine) dateWeatherMultiplier(date string) *float64 {
	if e.weather == nil {
		return nil
	}
	enabled, err := e.store.WeatherAdjustmentEnabled()
	if err != nil || !enabled {
		return nil
	}
	snapshot, ok := e.weather.ForDate(date)
	if !ok {
		// Fall back to the current observation for today's date.
		tz, tzErr := e.store.Timezone()
		if tzErr == nil && date == model.LocalDayKey(e.now(), tz) {
			return e.currentWeatherMultiplier()
		}
		return nil
	}
	multiplier := weather.CalculateMultiplier(*snapshot)
	return &multiplier
}
