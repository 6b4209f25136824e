package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dripline/dripline/internal/goal"
	"github.com/dripline/dripline/internal/handler/dto"
	"github.com/dripline/dripline/internal/model"
	"github.com/dripline/dripline/internal/remote"
	"github.com/dripline/dripline/internal/store"
)

const profileSyncTimeout = 15 * time.Second

// errInvalidPreference signals that applyPreferences already wrote a 400.
var errInvalidPreference = errors.New("invalid preference value")

// ProfileHandler serves the user profile and device preferences.
type ProfileHandler struct {
	store  *store.Store
	engine *goal.Engine
	remote *remote.Client
	logger *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler. remote may be nil to
// disable profile push.
func NewProfileHandler(st *store.Store, engine *goal.Engine, rc *remote.Client, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		store:  st,
		engine: engine,
		remote: rc,
		logger: logger,
	}
}

// GetProfile handles GET /v1/profile.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.store.Profile()
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "NO_PROFILE", "No profile stored")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// PutProfile handles PUT /v1/profile. A profile write recomputes the goals of
// recent days and pushes the profile to the backend best-effort.
func (h *ProfileHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.WeightKg < model.MinWeightKg || req.WeightKg > model.MaxWeightKg {
		writeError(w, http.StatusBadRequest, "INVALID_WEIGHT", "Weight out of accepted range")
		return
	}
	if req.Age < model.MinAge || req.Age > model.MaxAge {
		writeError(w, http.StatusBadRequest, "INVALID_AGE", "Age out of accepted range")
		return
	}
	activity := model.ActivityLevel(req.ActivityLevel)
	if !activity.IsValid() {
		writeError(w, http.StatusBadRequest, "INVALID_ACTIVITY_LEVEL", "Unknown activity level")
		return
	}
	climate := model.Climate(req.Climate)
	if !climate.IsValid() {
		writeError(w, http.StatusBadRequest, "INVALID_CLIMATE", "Unknown climate")
		return
	}

	existing, err := h.store.Profile()
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	profile := &model.UserProfile{
		Name:          req.Name,
		Email:         req.Email,
		WeightKg:      req.WeightKg,
		Age:           req.Age,
		Gender:        model.Gender(req.Gender),
		ActivityLevel: activity,
		Climate:       climate,
		CreatedAt:     time.Now().UTC(),
	}
	if existing != nil {
		profile.CreatedAt = existing.CreatedAt
	}

	if err := h.store.SaveProfile(profile); err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	if err := h.engine.RecomputeRecent(); err != nil {
		h.logger.Warn("goal_recompute_failed", "error", err)
	}
	h.pushProfile()

	h.logger.Info("profile_updated", "weight_kg", profile.WeightKg, "activity_level", profile.ActivityLevel)

	writeJSON(w, http.StatusOK, profile)
}

// pushProfile syncs the profile to the backend without blocking the request.
// Failures are logged and dropped; the next profile write retries.
func (h *ProfileHandler) pushProfile() {
	if h.remote == nil || !h.remote.Configured() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), profileSyncTimeout)
		defer cancel()

		userID, err := h.remote.EnsureBackendUser(ctx)
		if err != nil {
			h.logger.Warn("profile_sync_skipped", "error", err)
			return
		}
		if err := h.remote.SyncProfile(ctx, userID); err != nil {
			h.logger.Warn("profile_sync_failed", "error", err)
		}
	}()
}

// GetPreferences handles GET /v1/preferences.
func (h *ProfileHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	resp, err := h.preferences()
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// PutPreferences handles PUT /v1/preferences. Absent fields keep their
// stored values.
func (h *ProfileHandler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.applyPreferences(w, req); err != nil {
		return
	}

	resp, err := h.preferences()
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("preferences_updated")

	writeJSON(w, http.StatusOK, resp)
}

// applyPreferences validates and stores each provided field. On validation
// failure it writes the error response and returns a non-nil error.
func (h *ProfileHandler) applyPreferences(w http.ResponseWriter, req dto.UpdatePreferencesRequest) error {
	fail := func(code, message string) error {
		writeError(w, http.StatusBadRequest, code, message)
		return errInvalidPreference
	}

	if req.VolumeUnit != nil {
		unit := model.VolumeUnit(*req.VolumeUnit)
		if unit != model.UnitML && unit != model.UnitOz {
			return fail("INVALID_VOLUME_UNIT", "Volume unit must be ml or oz")
		}
		if err := h.store.SetVolumeUnit(unit); err != nil {
			return h.storeFailure(w, err)
		}
	}
	if req.WeightUnit != nil {
		unit := model.WeightUnit(*req.WeightUnit)
		if unit != model.UnitKg && unit != model.UnitLbs {
			return fail("INVALID_WEIGHT_UNIT", "Weight unit must be kg or lbs")
		}
		if err := h.store.SetWeightUnit(unit); err != nil {
			return h.storeFailure(w, err)
		}
	}
	if req.TemperatureUnit != nil {
		unit := model.TemperatureUnit(*req.TemperatureUnit)
		if unit != model.UnitCelsius && unit != model.UnitFahrenheit {
			return fail("INVALID_TEMPERATURE_UNIT", "Temperature unit must be C or F")
		}
		if err := h.store.SetTemperatureUnit(unit); err != nil {
			return h.storeFailure(w, err)
		}
	}
	if req.Timezone != nil {
		if *req.Timezone != "" {
			if _, err := time.LoadLocation(*req.Timezone); err != nil {
				return fail("INVALID_TIMEZONE", "Unknown IANA timezone")
			}
		}
		if err := h.store.SetTimezone(*req.Timezone); err != nil {
			return h.storeFailure(w, err)
		}
	}
	if req.WeatherAdjustmentEnabled != nil {
		if err := h.store.SetWeatherAdjustmentEnabled(*req.WeatherAdjustmentEnabled); err != nil {
			return h.storeFailure(w, err)
		}
	}
	if req.ProgressWheelStyle != nil {
		style := model.ProgressWheelStyle(*req.ProgressWheelStyle)
		if style != model.WheelDrinkColors && style != model.WheelBlackWhite && style != model.WheelWaterBlue {
			return fail("INVALID_WHEEL_STYLE", "Unknown progress wheel style")
		}
		if err := h.store.SetProgressWheelStyle(style); err != nil {
			return h.storeFailure(w, err)
		}
	}
	return nil
}

func (h *ProfileHandler) storeFailure(w http.ResponseWriter, err error) error {
	h.logger.Error("internal_error", "error", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	return err
}

func (h *ProfileHandler) preferences() (dto.PreferencesResponse, error) {
	var resp dto.PreferencesResponse

	volumeUnit, err := h.store.VolumeUnit()
	if err != nil {
		return resp, err
	}
	weightUnit, err := h.store.WeightUnit()
	if err != nil {
		return resp, err
	}
	tempUnit, err := h.store.TemperatureUnit()
	if err != nil {
		return resp, err
	}
	tz, err := h.store.Timezone()
	if err != nil {
		return resp, err
	}
	weatherAdjustment, err := h.store.WeatherAdjustmentEnabled()
	if err != nil {
		return resp, err
	}
	wheelStyle, err := h.store.ProgressWheelStyle()
	if err != nil {
		return resp, err
	}

	return dto.PreferencesResponse{
		VolumeUnit:               string(volumeUnit),
		WeightUnit:               string(weightUnit),
		TemperatureUnit:          string(tempUnit),
		Timezone:                 tz,
		WeatherAdjustmentEnabled: weatherAdjustment,
		ProgressWheelStyle:       string(wheelStyle),
	}, nil
}
