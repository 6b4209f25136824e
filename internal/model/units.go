package model

import "fmt"

// VolumeUnit is the user's preferred display unit for liquid volume.
type VolumeUnit string

const (
	UnitML VolumeUnit = "ml"
	UnitOz VolumeUnit = "oz"
)

// WeightUnit is the user's preferred display unit for body weight.
type WeightUnit string

const (
	UnitKg  WeightUnit = "kg"
	UnitLbs WeightUnit = "lbs"
)

// TemperatureUnit is the user's preferred display unit for temperature.
type TemperatureUnit string

const (
	UnitCelsius    TemperatureUnit = "C"
	UnitFahrenheit TemperatureUnit = "F"
)

// ProgressWheelStyle selects the progress wheel color scheme.
type ProgressWheelStyle string

const (
	WheelDrinkColors ProgressWheelStyle = "drink_colors"
	WheelBlackWhite  ProgressWheelStyle = "black_white"
	WheelWaterBlue   ProgressWheelStyle = "water_blue"
)

const (
	mlPerOz  = 1 / 0.033814
	lbsPerKg = 2.20462
)

// MLToOz converts milliliters to fluid ounces.
func MLToOz(ml float64) float64 { return ml * 0.033814 }

// OzToML converts fluid ounces to milliliters.
func OzToML(oz float64) float64 { return oz * mlPerOz }

// KgToLbs converts kilograms to pounds.
func KgToLbs(kg float64) float64 { return kg * lbsPerKg }

// LbsToKg converts pounds to kilograms.
func LbsToKg(lbs float64) float64 { return lbs / lbsPerKg }

// CelsiusToFahrenheit converts a temperature to Fahrenheit.
func CelsiusToFahrenheit(c float64) float64 { return c*9/5 + 32 }

// FahrenheitToCelsius converts a temperature to Celsius.
func FahrenheitToCelsius(f float64) float64 { return (f - 32) * 5 / 9 }

// FormatVolume renders a volume in the given unit.
func FormatVolume(ml float64, unit VolumeUnit) string {
	if unit == UnitOz {
		return fmt.Sprintf("%.1foz", MLToOz(ml))
	}
	return fmt.Sprintf("%.0fml", ml)
}

// FormatWeight renders a weight in the given unit.
func FormatWeight(kg float64, unit WeightUnit) string {
	if unit == UnitLbs {
		return fmt.Sprintf("%.1f lbs", KgToLbs(kg))
	}
	return fmt.Sprintf("%.1f kg", kg)
}

// FormatTemperature renders a Celsius temperature in the given unit.
func FormatTemperature(celsius float64, unit TemperatureUnit) string {
	if unit == UnitFahrenheit {
		return fmt.Sprintf("%.0f°F", CelsiusToFahrenheit(celsius))
	}
	return fmt.Sprintf("%.0f°C", celsius)
}
