// Package weather fetches and caches location-keyed weather and derives the
// hydration multiplier used by the goal engine.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dripline/dripline/internal/model"
)

// Default open-meteo endpoints. No API key required.
const (
	DefaultForecastBaseURL  = "https://api.open-meteo.com"
	DefaultGeocodingBaseURL = "https://geocoding-api.open-meteo.com"

	clientTimeout = 15 * time.Second
)

// Provider fetches weather observations and resolves location names.
type Provider interface {
	FetchCurrent(ctx context.Context, lat, lon float64) (model.WeatherSnapshot, error)
	FetchWeekly(ctx context.Context, lat, lon float64) ([]model.WeatherSnapshot, error)
	LocationName(ctx context.Context, lat, lon float64) string
}

// Client talks to the open-meteo forecast and geocoding APIs.
type Client struct {
	httpClient       *http.Client
	forecastBaseURL  string
	geocodingBaseURL string
}

// NewClient creates a weather API client. Empty base URLs fall back to the
// public open-meteo endpoints.
func NewClient(forecastBaseURL, geocodingBaseURL string) *Client {
	if forecastBaseURL == "" {
		forecastBaseURL = DefaultForecastBaseURL
	}
	if geocodingBaseURL == "" {
		geocodingBaseURL = DefaultGeocodingBaseURL
	}
	return &Client{
		httpClient:       &http.Client{Timeout: clientTimeout},
		forecastBaseURL:  strings.TrimSuffix(forecastBaseURL, "/"),
		geocodingBaseURL: strings.TrimSuffix(geocodingBaseURL, "/"),
	}
}

type currentResponse struct {
	Current struct {
		Temperature2m       float64 `json:"temperature_2m"`
		RelativeHumidity2m  float64 `json:"relative_humidity_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		Precipitation       float64 `json:"precipitation"`
		WeatherCode         int     `json:"weather_code"`
		WindSpeed10m        float64 `json:"wind_speed_10m"`
	} `json:"current"`
}

// FetchCurrent fetches the current conditions at a coordinate.
func (c *Client) FetchCurrent(ctx context.Context, lat, lon float64) (model.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,precipitation,weather_code,wind_speed_10m")
	q.Set("timezone", "auto")

	var payload currentResponse
	if err := c.getJSON(ctx, c.forecastBaseURL+"/v1/forecast?"+q.Encode(), &payload); err != nil {
		return model.WeatherSnapshot{}, fmt.Errorf("fetch current weather: %w", err)
	}

	info := model.WeatherCodeInfo(payload.Current.WeatherCode)
	return model.WeatherSnapshot{
		TemperatureC:    payload.Current.Temperature2m,
		Humidity:        payload.Current.RelativeHumidity2m,
		Description:     info.Description,
		Icon:            info.Icon,
		Location:        c.LocationName(ctx, lat, lon),
		FetchedAt:       time.Now().UTC(),
		FeelsLikeC:      payload.Current.ApparentTemperature,
		WindSpeedKmh:    payload.Current.WindSpeed10m,
		PrecipitationMM: payload.Current.Precipitation,
	}, nil
}

type weeklyResponse struct {
	Daily struct {
		Time                   []string  `json:"time"`
		Temperature2mMax       []float64 `json:"temperature_2m_max"`
		Temperature2mMin       []float64 `json:"temperature_2m_min"`
		ApparentTemperatureMax []float64 `json:"apparent_temperature_max"`
		RelativeHumidity2mMean []float64 `json:"relative_humidity_2m_mean"`
		PrecipitationSum       []float64 `json:"precipitation_sum"`
		WeatherCode            []int     `json:"weather_code"`
		WindSpeed10mMax        []float64 `json:"wind_speed_10m_max"`
	} `json:"daily"`
}

// FetchWeekly fetches the 7-day daily forecast at a coordinate. Each entry
// carries its YYYY-MM-DD date and the day's mean temperature.
func (c *Client) FetchWeekly(ctx context.Context, lat, lon float64) ([]model.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("daily", "temperature_2m_max,temperature_2m_min,apparent_temperature_max,relative_humidity_2m_mean,precipitation_sum,weather_code,wind_speed_10m_max")
	q.Set("timezone", "auto")
	q.Set("forecast_days", "7")

	var payload weeklyResponse
	if err := c.getJSON(ctx, c.forecastBaseURL+"/v1/forecast?"+q.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("fetch weekly weather: %w", err)
	}

	location := c.LocationName(ctx, lat, lon)
	daily := payload.Daily
	snapshots := make([]model.WeatherSnapshot, 0, len(daily.Time))
	for i, date := range daily.Time {
		if i >= len(daily.Temperature2mMax) || i >= len(daily.Temperature2mMin) || i >= len(daily.WeatherCode) {
			break
		}
		info := model.WeatherCodeInfo(daily.WeatherCode[i])
		snapshot := model.WeatherSnapshot{
			TemperatureC: (daily.Temperature2mMax[i] + daily.Temperature2mMin[i]) / 2,
			Description:  info.Description,
			Icon:         info.Icon,
			Location:     location,
			FetchedAt:    time.Now().UTC(),
			Date:         date,
		}
		if i < len(daily.RelativeHumidity2mMean) {
			snapshot.Humidity = daily.RelativeHumidity2mMean[i]
		}
		if i < len(daily.ApparentTemperatureMax) {
			snapshot.FeelsLikeC = daily.ApparentTemperatureMax[i]
		}
		if i < len(daily.WindSpeed10mMax) {
			snapshot.WindSpeedKmh = daily.WindSpeed10mMax[i]
		}
		if i < len(daily.PrecipitationSum) {
			snapshot.PrecipitationMM = daily.PrecipitationSum[i]
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

type geocodingResult struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Admin1    string  `json:"admin1"`
	Country   string  `json:"country"`
}

type geocodingResponse struct {
	Results []geocodingResult `json:"results"`
}

// LocationName reverse-geocodes a coordinate into a display name. Failures
// degrade to a formatted coordinate string; the name is cosmetic.
func (c *Client) LocationName(ctx context.Context, lat, lon float64) string {
	fallback := fmt.Sprintf("%.2f°, %.2f°", lat, lon)

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("count", "1")

	var payload geocodingResponse
	if err := c.getJSON(ctx, c.geocodingBaseURL+"/v1/reverse?"+q.Encode(), &payload); err != nil {
		return fallback
	}
	if len(payload.Results) == 0 {
		return fallback
	}
	if name := formatPlaceName(payload.Results[0]); name != "" {
		return name
	}
	return fallback
}

// SearchLocations resolves a free-text query (city, zip, airport code) into
// candidate coordinates.
func (c *Client) SearchLocations(ctx context.Context, query string) ([]model.Location, error) {
	q := url.Values{}
	q.Set("name", query)
	q.Set("count", "5")
	q.Set("language", "en")
	q.Set("format", "json")

	var payload geocodingResponse
	if err := c.getJSON(ctx, c.geocodingBaseURL+"/v1/search?"+q.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("search location: %w", err)
	}

	locations := make([]model.Location, 0, len(payload.Results))
	for _, result := range payload.Results {
		locations = append(locations, model.Location{
			Lat:  result.Latitude,
			Lon:  result.Longitude,
			Name: formatPlaceName(result),
		})
	}
	return locations, nil
}

func formatPlaceName(result geocodingResult) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{result.Name, result.Admin1, result.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

func (c *Client) getJSON(ctx context.Context, requestURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather API error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
