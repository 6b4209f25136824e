package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dripline/dripline/internal/handler/dto"
	"github.com/dripline/dripline/internal/model"
	"github.com/dripline/dripline/internal/store"
	"github.com/dripline/dripline/internal/weather"
)

// LocationSearcher resolves free-text place queries to coordinates.
type LocationSearcher interface {
	SearchLocations(ctx context.Context, query string) ([]model.Location, error)
}

// WeatherHandler serves cached weather, the refresh quota, and location
// preferences.
type WeatherHandler struct {
	svc      *weather.Service
	searcher LocationSearcher
	store    *store.Store
	logger   *slog.Logger
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(svc *weather.Service, searcher LocationSearcher, st *store.Store, logger *slog.Logger) *WeatherHandler {
	return &WeatherHandler{
		svc:      svc,
		searcher: searcher,
		store:    st,
		logger:   logger,
	}
}

// Current handles GET /v1/weather. A true force parameter bypasses the cache
// TTL, subject to the refresh quota. Optional lat/lon override the stored
// location preference.
func (h *WeatherHandler) Current(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	force := query.Get("force") == "true" || query.Get("force") == "1"

	var (
		snapshot *model.WeatherSnapshot
		err      error
	)
	if lat, lon, ok := parseCoords(query.Get("lat"), query.Get("lon")); ok {
		snapshot, err = h.svc.CurrentAt(r.Context(), lat, lon, force)
	} else {
		snapshot, err = h.svc.Current(r.Context(), force)
	}
	if err != nil {
		h.handleWeatherError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToWeatherResponse(snapshot))
}

// Weekly handles GET /v1/weather/weekly. Forced weekly refreshes bypass the
// once-per-day cadence without consuming the current-conditions quota.
func (h *WeatherHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	force := query.Get("force") == "true" || query.Get("force") == "1"

	var (
		cache *model.WeeklyWeatherCache
		err   error
	)
	if lat, lon, ok := parseCoords(query.Get("lat"), query.Get("lon")); ok {
		cache, err = h.svc.WeeklyAt(r.Context(), lat, lon, force)
	} else {
		cache, err = h.svc.Weekly(r.Context(), force)
	}
	if err != nil {
		h.handleWeatherError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToWeeklyWeatherResponse(cache))
}

// RefreshQuota handles GET /v1/weather/refresh-quota.
func (h *WeatherHandler) RefreshQuota(w http.ResponseWriter, r *http.Request) {
	quota, err := h.svc.RefreshQuota()
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}
	writeJSON(w, http.StatusOK, quota)
}

// SearchLocations handles GET /v1/locations/search.
func (h *WeatherHandler) SearchLocations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "MISSING_QUERY", "Query parameter q is required")
		return
	}

	locations, err := h.searcher.SearchLocations(r.Context(), query)
	if err != nil {
		h.logger.Error("location_search_failed", "error", err)
		writeError(w, http.StatusBadGateway, "GEOCODING_UNAVAILABLE", "Location search is unavailable")
		return
	}
	writeJSON(w, http.StatusOK, locations)
}

// SetLocation handles PUT /v1/location. Switching location drops the weather
// caches so the next read fetches for the new place.
func (h *WeatherHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	var req dto.LocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	pref := &model.LocationPreference{Mode: model.LocationMode(req.Mode)}
	switch pref.Mode {
	case model.LocationAuto:
	case model.LocationManual:
		if req.Lat == nil || req.Lon == nil {
			writeError(w, http.StatusBadRequest, "MISSING_COORDINATES", "Manual mode requires lat and lon")
			return
		}
		if *req.Lat < -90 || *req.Lat > 90 || *req.Lon < -180 || *req.Lon > 180 {
			writeError(w, http.StatusBadRequest, "INVALID_COORDINATES", "Coordinates out of range")
			return
		}
		pref.Manual = &model.Location{Lat: *req.Lat, Lon: *req.Lon, Name: req.Name}
	default:
		writeError(w, http.StatusBadRequest, "INVALID_LOCATION_MODE", "Mode must be auto or manual")
		return
	}

	if err := h.store.SaveLocationPreference(pref); err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}
	if err := h.store.DeleteWeatherCache(); err != nil {
		h.logger.Warn("weather_cache_clear_failed", "error", err)
	}
	if err := h.store.DeleteWeeklyWeatherCache(); err != nil {
		h.logger.Warn("weekly_cache_clear_failed", "error", err)
	}

	h.logger.Info("location_updated", "mode", req.Mode)

	writeJSON(w, http.StatusOK, pref)
}

// handleWeatherError maps weather service errors to HTTP responses.
func (h *WeatherHandler) handleWeatherError(w http.ResponseWriter, err error) {
	var rateErr *weather.RateLimitError
	switch {
	case errors.As(err, &rateErr):
		seconds := int(time.Until(rateErr.ResetAt).Seconds())
		if seconds < 0 {
			seconds = 0
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		writeError(w, http.StatusTooManyRequests, "REFRESH_QUOTA_EXCEEDED",
			"Forced refresh quota exhausted until "+rateErr.ResetAt.UTC().Format(time.RFC3339))
	case errors.Is(err, weather.ErrNoLocation):
		writeError(w, http.StatusConflict, "NO_LOCATION", "No location configured; set one or pass lat/lon")
	default:
		h.logger.Error("weather_fetch_failed", "error", err)
		writeError(w, http.StatusBadGateway, "WEATHER_UNAVAILABLE", "Weather provider is unavailable")
	}
}

func parseCoords(latStr, lonStr string) (float64, float64, bool) {
	if latStr == "" || lonStr == "" {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
