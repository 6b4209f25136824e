package store

import (
	"strconv"

	"github.com/dripline/dripline/internal/model"
)

// DefaultGoalML is the daily goal before the goal engine or the user set one.
const DefaultGoalML = 2500

// Stats returns the persisted user stats, or zeroed defaults with the locked
// achievement catalog when absent or unreadable.
func (s *Store) Stats() (*model.UserStats, error) {
	var stats model.UserStats
	ok, err := s.getJSON(keyStats, &stats)
	if err != nil {
		return nil, err
	}
	if !ok {
		return model.DefaultStats(), nil
	}
	if len(stats.Achievements) == 0 {
		stats.Achievements = model.DefaultAchievements()
	}
	return &stats, nil
}

// SaveStats overwrites the stats accelerator blob.
func (s *Store) SaveStats(stats *model.UserStats) error {
	return s.setJSON(keyStats, stats)
}

// DailyGoal returns the stored daily goal in mL, or DefaultGoalML.
func (s *Store) DailyGoal() (float64, error) {
	raw, ok, err := s.get(keyGoal)
	if err != nil || !ok {
		return DefaultGoalML, err
	}
	goal, perr := strconv.ParseFloat(raw, 64)
	if perr != nil || goal <= 0 {
		return DefaultGoalML, nil
	}
	return goal, nil
}

// SaveDailyGoal stores the daily goal in mL.
func (s *Store) SaveDailyGoal(goalML float64) error {
	return s.set(keyGoal, strconv.FormatFloat(goalML, 'f', -1, 64))
}

// GoalMode returns how the daily goal is derived. Defaults to recommended.
func (s *Store) GoalMode() (model.GoalMode, error) {
	raw, ok, err := s.get(keyGoalMode)
	if err != nil || !ok {
		return model.GoalModeRecommended, err
	}
	mode := model.GoalMode(raw)
	if mode != model.GoalModeCustom && mode != model.GoalModeRecommended {
		return model.GoalModeRecommended, nil
	}
	return mode, nil
}

// SaveGoalMode stores the goal derivation mode.
func (s *Store) SaveGoalMode(mode model.GoalMode) error {
	return s.set(keyGoalMode, string(mode))
}

// Profile returns the stored user profile, or nil when none is set.
func (s *Store) Profile() (*model.UserProfile, error) {
	var profile model.UserProfile
	ok, err := s.getJSON(keyProfile, &profile)
	if err != nil || !ok {
		return nil, err
	}
	return &profile, nil
}

// SaveProfile overwrites the stored user profile.
func (s *Store) SaveProfile(profile *model.UserProfile) error {
	return s.setJSON(keyProfile, profile)
}
