package model

import "time"

// Gender of the user, used only for remote profile sync.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ActivityLevel buckets weekly exercise volume.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// ActivityMultipliers scales the base hydration goal by activity level.
var ActivityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.0,
	ActivityLight:      1.1,
	ActivityModerate:   1.2,
	ActivityActive:     1.3,
	ActivityVeryActive: 1.5,
}

// IsValid checks if the activity level is known.
func (a ActivityLevel) IsValid() bool {
	_, ok := ActivityMultipliers[a]
	return ok
}

// Climate is the user's static climate setting, used when live weather
// adjustment is disabled or unavailable.
type Climate string

const (
	ClimateCold     Climate = "cold"
	ClimateModerate Climate = "moderate"
	ClimateHot      Climate = "hot"
)

// ClimateMultipliers scales the base hydration goal by climate.
var ClimateMultipliers = map[Climate]float64{
	ClimateCold:     0.9,
	ClimateModerate: 1.0,
	ClimateHot:      1.2,
}

// IsValid checks if the climate is known.
func (c Climate) IsValid() bool {
	_, ok := ClimateMultipliers[c]
	return ok
}

// ClimateFromTemperature buckets a temperature into a climate category.
func ClimateFromTemperature(celsius float64) Climate {
	switch {
	case celsius < 15:
		return ClimateCold
	case celsius > 25:
		return ClimateHot
	default:
		return ClimateModerate
	}
}

// Profile bounds accepted on writes.
const (
	MinWeightKg = 20.0
	MaxWeightKg = 400.0
	MinAge      = 1
	MaxAge      = 130
)

// UserProfile holds the attributes the goal engine and remote sync need.
// Weight is stored in kilograms regardless of the display unit.
type UserProfile struct {
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	WeightKg      float64       `json:"weight_kg"`
	Age           int           `json:"age"`
	Gender        Gender        `json:"gender"`
	ActivityLevel ActivityLevel `json:"activity_level"`
	Climate       Climate       `json:"climate"`
	CreatedAt     time.Time     `json:"created_at"`
}

// GoalMode selects between the computed goal and a manual override.
type GoalMode string

const (
	GoalModeRecommended GoalMode = "recommended"
	GoalModeCustom      GoalMode = "custom"
)
