package store

import (
	"github.com/dripline/dripline/internal/model"
)

// Preference keys under the pref: namespace.
const (
	prefVolumeUnit      = keyPrefPrefix + "volume_unit"
	prefWeightUnit      = keyPrefPrefix + "weight_unit"
	prefTemperatureUnit = keyPrefPrefix + "temperature_unit"
	prefTimezone        = keyPrefPrefix + "timezone"
	prefWeatherAdjust   = keyPrefPrefix + "weather_adjustment"
	prefWheelStyle      = keyPrefPrefix + "progress_wheel_style"
)

// VolumeUnit returns the preferred volume unit, defaulting to milliliters.
func (s *Store) VolumeUnit() (model.VolumeUnit, error) {
	raw, ok, err := s.get(prefVolumeUnit)
	if err != nil || !ok {
		return model.UnitML, err
	}
	if unit := model.VolumeUnit(raw); unit == model.UnitOz {
		return unit, nil
	}
	return model.UnitML, nil
}

// SetVolumeUnit stores the preferred volume unit.
func (s *Store) SetVolumeUnit(unit model.VolumeUnit) error {
	return s.set(prefVolumeUnit, string(unit))
}

// WeightUnit returns the preferred weight unit, defaulting to kilograms.
func (s *Store) WeightUnit() (model.WeightUnit, error) {
	raw, ok, err := s.get(prefWeightUnit)
	if err != nil || !ok {
		return model.UnitKg, err
	}
	if unit := model.WeightUnit(raw); unit == model.UnitLbs {
		return unit, nil
	}
	return model.UnitKg, nil
}

// SetWeightUnit stores the preferred weight unit.
func (s *Store) SetWeightUnit(unit model.WeightUnit) error {
	return s.set(prefWeightUnit, string(unit))
}

// TemperatureUnit returns the preferred temperature unit, defaulting to
// Fahrenheit.
func (s *Store) TemperatureUnit() (model.TemperatureUnit, error) {
	raw, ok, err := s.get(prefTemperatureUnit)
	if err != nil || !ok {
		return model.UnitFahrenheit, err
	}
	if unit := model.TemperatureUnit(raw); unit == model.UnitCelsius {
		return unit, nil
	}
	return model.UnitFahrenheit, nil
}

// SetTemperatureUnit stores the preferred temperature unit.
func (s *Store) SetTemperatureUnit(unit model.TemperatureUnit) error {
	return s.set(prefTemperatureUnit, string(unit))
}

// Timezone returns the configured IANA timezone name, empty when unset
// (callers fall back to the system timezone).
func (s *Store) Timezone() (string, error) {
	raw, _, err := s.get(prefTimezone)
	return raw, err
}

// SetTimezone stores the configured timezone name.
func (s *Store) SetTimezone(tz string) error {
	return s.set(prefTimezone, tz)
}

// WeatherAdjustmentEnabled reports whether goals follow live weather.
// Defaults to true.
func (s *Store) WeatherAdjustmentEnabled() (bool, error) {
	raw, ok, err := s.get(prefWeatherAdjust)
	if err != nil || !ok {
		return true, err
	}
	return raw != "false", nil
}

// SetWeatherAdjustmentEnabled stores the weather adjustment toggle.
func (s *Store) SetWeatherAdjustmentEnabled(enabled bool) error {
	if enabled {
		return s.set(prefWeatherAdjust, "true")
	}
	return s.set(prefWeatherAdjust, "false")
}

// ProgressWheelStyle returns the wheel style, defaulting to drink colors.
func (s *Store) ProgressWheelStyle() (model.ProgressWheelStyle, error) {
	raw, ok, err := s.get(prefWheelStyle)
	if err != nil || !ok {
		return model.WheelDrinkColors, err
	}
	switch style := model.ProgressWheelStyle(raw); style {
	case model.WheelBlackWhite, model.WheelWaterBlue:
		return style, nil
	default:
		return model.WheelDrinkColors, nil
	}
}

// SetProgressWheelStyle stores the wheel style.
func (s *Store) SetProgressWheelStyle(style model.ProgressWheelStyle) error {
	return s.set(prefWheelStyle, string(style))
}
