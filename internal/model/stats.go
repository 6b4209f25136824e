package model

import "time"

// Achievement tracks progress toward a single unlockable milestone.
// Unlocked is monotonic: it transitions false to true and never reverts.
type Achievement struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Icon            string     `json:"icon"`
	Requirement     float64    `json:"requirement"`
	CurrentProgress float64    `json:"current_progress"`
	Unlocked        bool       `json:"unlocked"`
	UnlockedAt      *time.Time `json:"unlocked_at,omitempty"`
}

// Achievement IDs. Streak-based achievements measure CurrentStreak; total-
// based ones measure TotalConsumedML.
const (
	AchFirstDay    = "first_day"
	AchWeekStreak  = "week_streak"
	AchMonthStreak = "month_streak"
	AchTotal10L    = "total_10l"
	AchTotal100L   = "total_100l"
	AchPerfectWeek = "perfect_week"
)

// DefaultAchievements returns the locked achievement catalog.
func DefaultAchievements() []Achievement {
	return []Achievement{
		{ID: AchFirstDay, Title: "First Drop", Description: "Complete your first day", Icon: "droplet", Requirement: 1},
		{ID: AchWeekStreak, Title: "Week Warrior", Description: "Maintain a 7-day streak", Icon: "waves", Requirement: 7},
		{ID: AchMonthStreak, Title: "Hydration Hero", Description: "Maintain a 30-day streak", Icon: "trophy", Requirement: 30},
		{ID: AchTotal10L, Title: "Ocean Explorer", Description: "Drink 10 liters total", Icon: "fish", Requirement: 10000},
		{ID: AchTotal100L, Title: "Aqua Master", Description: "Drink 100 liters total", Icon: "waves", Requirement: 100000},
		{ID: AchPerfectWeek, Title: "Perfect Week", Description: "Meet your goal 7 days in a row", Icon: "star", Requirement: 7},
	}
}

// UserStats is derived, persisted-as-accelerator state. It is recomputable
// from the full day record set; the store copy only short-cuts that scan.
type UserStats struct {
	CurrentStreak    int            `json:"current_streak"`
	LongestStreak    int            `json:"longest_streak"`
	TotalDaysTracked int            `json:"total_days_tracked"`
	TotalConsumedML  float64        `json:"total_consumed_ml"`
	Achievements     []Achievement  `json:"achievements"`
	History          []DailySummary `json:"history,omitempty"`
}

// DefaultStats returns zeroed stats with the locked achievement catalog.
func DefaultStats() *UserStats {
	return &UserStats{Achievements: DefaultAchievements()}
}

// Achievement returns a pointer to the achievement with the given id, or nil.
func (s *UserStats) Achievement(id string) *Achievement {
	for i := range s.Achievements {
		if s.Achievements[i].ID == id {
			return &s.Achievements[i]
		}
	}
	return nil
}
