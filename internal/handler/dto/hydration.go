// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/dripline/dripline/internal/model"
)

// ErrorResponse is the error envelope for all non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// AddDrinkRequest represents the request body for logging a drink.
type AddDrinkRequest struct {
	Date          string  `json:"date,omitempty"`
	Type          string  `json:"type"`
	AmountML      float64 `json:"amount_ml"`
	CustomDrinkID string  `json:"custom_drink_id,omitempty"`
}

// DrinkResponse represents one logged drink event.
type DrinkResponse struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Label         string    `json:"label"`
	CustomDrinkID string    `json:"custom_drink_id,omitempty"`
	AmountML      float64   `json:"amount_ml"`
	HydrationML   float64   `json:"hydration_ml"`
	Timestamp     time.Time `json:"timestamp"`
	Source        string    `json:"source"`
	Color         string    `json:"color,omitempty"`
}

// DayResponse represents one day's record with derived progress.
type DayResponse struct {
	Date             string          `json:"date"`
	Drinks           []DrinkResponse `json:"drinks"`
	TotalHydrationML float64         `json:"total_hydration_ml"`
	TotalVolumeML    float64         `json:"total_volume_ml"`
	GoalML           float64         `json:"goal_ml"`
	ProgressPercent  float64         `json:"progress_percent"`
	Status           string          `json:"status"`
}

// AddDrinkResponse is the outcome of logging a drink: the event, the updated
// day, and any achievements unlocked by the mutation.
type AddDrinkResponse struct {
	Drink    DrinkResponse       `json:"drink"`
	Day      DayResponse         `json:"day"`
	Unlocked []model.Achievement `json:"unlocked,omitempty"`
}

// CustomDrinkRequest creates or updates a user-defined drink.
type CustomDrinkRequest struct {
	Name                string  `json:"name"`
	Color               string  `json:"color,omitempty"`
	Icon                string  `json:"icon,omitempty"`
	HydrationMultiplier float64 `json:"hydration_multiplier"`
}

// GoalResponse reports the effective daily goal and how it was derived.
type GoalResponse struct {
	GoalML float64 `json:"goal_ml"`
	Mode   string  `json:"mode"`
}

// SetGoalRequest switches goal derivation. Mode "custom" requires GoalML;
// mode "recommended" ignores it.
type SetGoalRequest struct {
	Mode   string  `json:"mode"`
	GoalML float64 `json:"goal_ml,omitempty"`
}

// SetDayGoalRequest overrides the goal for a single day.
type SetDayGoalRequest struct {
	GoalML float64 `json:"goal_ml"`
}

// PreferencesResponse is the full device preference set.
type PreferencesResponse struct {
	VolumeUnit               string `json:"volume_unit"`
	WeightUnit               string `json:"weight_unit"`
	TemperatureUnit          string `json:"temperature_unit"`
	Timezone                 string `json:"timezone,omitempty"`
	WeatherAdjustmentEnabled bool   `json:"weather_adjustment_enabled"`
	ProgressWheelStyle       string `json:"progress_wheel_style"`
}

// UpdatePreferencesRequest patches individual preferences; nil fields are
// left unchanged.
type UpdatePreferencesRequest struct {
	VolumeUnit               *string `json:"volume_unit,omitempty"`
	WeightUnit               *string `json:"weight_unit,omitempty"`
	TemperatureUnit          *string `json:"temperature_unit,omitempty"`
	Timezone                 *string `json:"timezone,omitempty"`
	WeatherAdjustmentEnabled *bool   `json:"weather_adjustment_enabled,omitempty"`
	ProgressWheelStyle       *string `json:"progress_wheel_style,omitempty"`
}

// ProfileRequest replaces the stored user profile.
type ProfileRequest struct {
	Name          string  `json:"name,omitempty"`
	Email         string  `json:"email,omitempty"`
	WeightKg      float64 `json:"weight_kg"`
	Age           int     `json:"age"`
	Gender        string  `json:"gender,omitempty"`
	ActivityLevel string  `json:"activity_level"`
	Climate       string  `json:"climate"`
}

// LoginRequest authenticates against the remote backend.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest creates a remote backend account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse describes the authenticated backend session.
type SessionResponse struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	HasProfile bool   `json:"has_profile"`
}

// SyncStatusResponse reports remote sync readiness.
type SyncStatusResponse struct {
	RemoteConfigured bool   `json:"remote_configured"`
	Authenticated    bool   `json:"authenticated"`
	BackendUserID    string `json:"backend_user_id,omitempty"`
}

// LocationRequest sets the manual location preference; Mode "auto" clears it.
type LocationRequest struct {
	Mode string   `json:"mode"`
	Lat  *float64 `json:"lat,omitempty"`
	Lon  *float64 `json:"lon,omitempty"`
	Name string   `json:"name,omitempty"`
}

// ToDrinkResponse converts a drink event for API responses.
func ToDrinkResponse(event model.DrinkEvent) DrinkResponse {
	return DrinkResponse{
		ID:            event.ID,
		Type:          string(event.Type),
		Label:         event.Label,
		CustomDrinkID: event.CustomDrinkID,
		AmountML:      event.AmountML,
		HydrationML:   event.HydrationML,
		Timestamp:     event.Timestamp,
		Source:        string(event.Source),
		Color:         model.DrinkColors[event.Type],
	}
}

// ToDayResponse converts a day record for API responses.
func ToDayResponse(record *model.DayRecord) DayResponse {
	drinks := make([]DrinkResponse, 0, len(record.Drinks))
	for _, event := range record.Drinks {
		drinks = append(drinks, ToDrinkResponse(event))
	}
	return DayResponse{
		Date:             record.Date,
		Drinks:           drinks,
		TotalHydrationML: record.TotalHydrationML,
		TotalVolumeML:    record.TotalVolumeML(),
		GoalML:           record.GoalML,
		ProgressPercent:  record.ProgressPercent(),
		Status:           string(record.Status()),
	}
}

// WeatherResponse is a weather snapshot plus the symbolic icon key clients
// render (the raw Icon field is an OpenWeather-style code).
type WeatherResponse struct {
	model.WeatherSnapshot
	IconName string `json:"icon_name"`
}

// WeeklyWeatherResponse is the 7-day forecast keyed by date.
type WeeklyWeatherResponse struct {
	Daily       map[string]WeatherResponse `json:"daily"`
	Location    model.Location             `json:"location"`
	LastUpdated string                     `json:"last_updated"`
}

// ToWeatherResponse converts a snapshot for API responses.
func ToWeatherResponse(snapshot *model.WeatherSnapshot) WeatherResponse {
	return WeatherResponse{
		WeatherSnapshot: *snapshot,
		IconName:        model.WeatherIconName(snapshot.Icon),
	}
}

// ToWeeklyWeatherResponse converts the weekly cache for API responses.
func ToWeeklyWeatherResponse(cache *model.WeeklyWeatherCache) WeeklyWeatherResponse {
	daily := make(map[string]WeatherResponse, len(cache.Daily))
	for date, snapshot := range cache.Daily {
		s := snapshot
		daily[date] = ToWeatherResponse(&s)
	}
	return WeeklyWeatherResponse{
		Daily:       daily,
		Location:    cache.Location,
		LastUpdated: cache.LastUpdated,
	}
}
