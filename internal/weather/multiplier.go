package weather

import "github.com/dripline/dripline/internal/model"

// Multiplier bounds.
const (
	MinMultiplier = 0.8
	MaxMultiplier = 1.5
)

// CalculateMultiplier derives the hydration goal multiplier from current
// conditions. Temperature bands are mutually exclusive, evaluated
// highest-threshold-first; the humidity adjustment is independent and
// additive. The result is clamped to [0.8, 1.5].
func CalculateMultiplier(snapshot model.WeatherSnapshot) float64 {
	multiplier := 1.0

	switch {
	case snapshot.TemperatureC > 30:
		multiplier += 0.3
	case snapshot.TemperatureC > 25:
		multiplier += 0.2
	case snapshot.TemperatureC < 10:
		multiplier -= 0.1
	}

	switch {
	case snapshot.Humidity < 30:
		multiplier += 0.15
	case snapshot.Humidity < 50:
		multiplier += 0.05
	}

	if multiplier < MinMultiplier {
		return MinMultiplier
	}
	if multiplier > MaxMultiplier {
		return MaxMultiplier
	}
	return multiplier
}
