package model

// DayRecord is the event stream and totals for one calendar day, identified
// by its date key (YYYY-MM-DD in the user's timezone). Drinks keep insertion
// order.
type DayRecord struct {
	Date             string       `json:"date"`
	Drinks           []DrinkEvent `json:"drinks"`
	TotalHydrationML float64      `json:"total_hydration_ml"`
	GoalML           float64      `json:"goal_ml"`
}

// NewDayRecord creates an empty record for a date with the given goal.
func NewDayRecord(date string, goalML float64) *DayRecord {
	return &DayRecord{
		Date:   date,
		Drinks: []DrinkEvent{},
		GoalML: goalML,
	}
}

// RecomputeTotal resets TotalHydrationML to the full sum over all events.
// Always a full sum, never an increment, so the invariant holds even after
// the drink slice was mutated elsewhere.
func (r *DayRecord) RecomputeTotal() {
	var total float64
	for _, d := range r.Drinks {
		total += d.HydrationML
	}
	r.TotalHydrationML = total
}

// GoalMet reports whether the day's total meets or exceeds its goal.
func (r *DayRecord) GoalMet() bool {
	return r.GoalML > 0 && r.TotalHydrationML >= r.GoalML
}

// ProgressPercent returns total/goal as a percentage, 0 when no goal is set.
func (r *DayRecord) ProgressPercent() float64 {
	if r.GoalML <= 0 {
		return 0
	}
	return r.TotalHydrationML / r.GoalML * 100
}

// TotalVolumeML returns the raw (unweighted) volume consumed.
func (r *DayRecord) TotalVolumeML() float64 {
	var total float64
	for _, d := range r.Drinks {
		total += d.AmountML
	}
	return total
}

// DayStatus is the coarse progress state of a day.
type DayStatus string

const (
	DayNotStarted DayStatus = "not_started"
	DayInProgress DayStatus = "in_progress"
	DayCompleted  DayStatus = "completed"
)

// Status computes the day's progress state.
func (r *DayRecord) Status() DayStatus {
	switch {
	case r.GoalMet():
		return DayCompleted
	case r.TotalHydrationML > 0:
		return DayInProgress
	default:
		return DayNotStarted
	}
}

// DailySummary is a compact per-day roll-up kept in stats history.
type DailySummary struct {
	Date               string    `json:"date"`
	Timezone           string    `json:"timezone,omitempty"`
	TotalVolumeML      float64   `json:"total_volume_ml"`
	TotalEffectiveML   float64   `json:"total_effective_ml"`
	GoalVolumeML       float64   `json:"goal_volume_ml"`
	ProgressPercentage float64   `json:"progress_percentage"`
	Status             DayStatus `json:"status"`
}

// Summary converts the record into its daily summary form.
func (r *DayRecord) Summary(timezone string) DailySummary {
	return DailySummary{
		Date:               r.Date,
		Timezone:           timezone,
		TotalVolumeML:      r.TotalVolumeML(),
		TotalEffectiveML:   r.TotalHydrationML,
		GoalVolumeML:       r.GoalML,
		ProgressPercentage: r.ProgressPercent(),
		Status:             r.Status(),
	}
}
