package model

import "time"

// WeatherSnapshot is one observation (or daily forecast) at a location.
// Temperatures are Celsius, wind km/h, precipitation mm.
type WeatherSnapshot struct {
	TemperatureC    float64   `json:"temperature_c"`
	Humidity        float64   `json:"humidity"`
	Description     string    `json:"description"`
	Icon            string    `json:"icon"`
	Location        string    `json:"location"`
	FetchedAt       time.Time `json:"fetched_at"`
	FeelsLikeC      float64   `json:"feels_like_c"`
	WindSpeedKmh    float64   `json:"wind_speed_kmh,omitempty"`
	PrecipitationMM float64   `json:"precipitation_mm,omitempty"`
	Date            string    `json:"date,omitempty"`
}

// WeatherCacheEntry is the persisted daily weather cache. RefreshCount and
// LastRefreshDate drive the manual-refresh quota.
type WeatherCacheEntry struct {
	Data            WeatherSnapshot `json:"data"`
	CachedAt        time.Time       `json:"cached_at"`
	RefreshCount    int             `json:"refresh_count"`
	LastRefreshDate string          `json:"last_refresh_date"`
}

// WeeklyWeatherCache holds the 7-day forecast keyed by date.
type WeeklyWeatherCache struct {
	Daily       map[string]WeatherSnapshot `json:"daily"`
	Location    Location                   `json:"location"`
	CachedAt    time.Time                  `json:"cached_at"`
	LastUpdated string                     `json:"last_updated"`
}

// Location is a resolved coordinate with a display name.
type Location struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name,omitempty"`
}

// LocationMode selects between device-resolved and manually picked location.
type LocationMode string

const (
	LocationAuto   LocationMode = "auto"
	LocationManual LocationMode = "manual"
)

// LocationPreference is the persisted location choice. Manual is set only
// when Mode is LocationManual.
type LocationPreference struct {
	Mode   LocationMode `json:"mode"`
	Manual *Location    `json:"manual,omitempty"`
}

// WeatherInfo is the display mapping for a WMO weather code.
type WeatherInfo struct {
	Description string
	Icon        string
}

// wmoWeatherCodes maps WMO interpretation codes to descriptions and icon
// codes (OpenWeather-style, consumed by WeatherIconName).
var wmoWeatherCodes = map[int]WeatherInfo{
	0:  {"clear sky", "01d"},
	1:  {"mainly clear", "01d"},
	2:  {"partly cloudy", "02d"},
	3:  {"overcast", "03d"},
	45: {"foggy", "50d"},
	48: {"depositing rime fog", "50d"},
	51: {"light drizzle", "09d"},
	53: {"moderate drizzle", "09d"},
	55: {"dense drizzle", "09d"},
	56: {"light freezing drizzle", "09d"},
	57: {"dense freezing drizzle", "09d"},
	61: {"slight rain", "10d"},
	63: {"moderate rain", "10d"},
	65: {"heavy rain", "10d"},
	66: {"light freezing rain", "13d"},
	67: {"heavy freezing rain", "13d"},
	71: {"slight snow fall", "13d"},
	73: {"moderate snow fall", "13d"},
	75: {"heavy snow fall", "13d"},
	77: {"snow grains", "13d"},
	80: {"slight rain showers", "09d"},
	81: {"moderate rain showers", "09d"},
	82: {"violent rain showers", "09d"},
	85: {"slight snow showers", "13d"},
	86: {"heavy snow showers", "13d"},
	95: {"thunderstorm", "11d"},
	96: {"thunderstorm with slight hail", "11d"},
	99: {"thunderstorm with heavy hail", "11d"},
}

// WeatherCodeInfo resolves a WMO weather code. Unknown codes get an explicit
// fallback rather than a zero value.
func WeatherCodeInfo(code int) WeatherInfo {
	if info, ok := wmoWeatherCodes[code]; ok {
		return info
	}
	return WeatherInfo{Description: "unknown", Icon: "01d"}
}

var weatherIconNames = map[string]string{
	"01d": "sun",
	"01n": "moon",
	"02d": "cloud-sun",
	"02n": "cloud-moon",
	"03d": "cloud",
	"03n": "cloud",
	"04d": "cloudy",
	"04n": "cloudy",
	"09d": "cloud-drizzle",
	"09n": "cloud-drizzle",
	"10d": "cloud-rain",
	"10n": "cloud-rain",
	"11d": "cloud-lightning",
	"11n": "cloud-lightning",
	"13d": "cloud-snow",
	"13n": "cloud-snow",
	"50d": "cloud-fog",
	"50n": "cloud-fog",
}

// WeatherIconName maps an icon code to a symbolic icon key, with a default
// for unknown codes.
func WeatherIconName(iconCode string) string {
	if name, ok := weatherIconNames[iconCode]; ok {
		return name
	}
	return "cloud-sun"
}
