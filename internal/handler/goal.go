package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dripline/dripline/internal/goal"
	"github.com/dripline/dripline/internal/handler/dto"
	"github.com/dripline/dripline/internal/model"
	"github.com/dripline/dripline/internal/store"
)

// GoalHandler serves the effective daily goal and mode switches.
type GoalHandler struct {
	engine *goal.Engine
	store  *store.Store
	logger *slog.Logger
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(engine *goal.Engine, st *store.Store, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{
		engine: engine,
		store:  st,
		logger: logger,
	}
}

// Get handles GET /v1/goal.
func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	goalML, err := h.engine.ForToday()
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}
	mode, err := h.store.GoalMode()
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.GoalResponse{
		GoalML: goalML,
		Mode:   string(mode),
	})
}

// Set handles PUT /v1/goal. Mode "custom" pins the given volume; mode
// "recommended" returns derivation to the profile and weather inputs.
func (h *GoalHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req dto.SetGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	switch model.GoalMode(req.Mode) {
	case model.GoalModeCustom:
		if req.GoalML <= 0 {
			writeError(w, http.StatusBadRequest, "INVALID_GOAL", "Custom goal must be positive")
			return
		}
		if err := h.engine.SetCustomGoal(req.GoalML); err != nil {
			h.logger.Error("internal_error", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
			return
		}
	case model.GoalModeRecommended:
		if err := h.engine.UseRecommended(); err != nil {
			h.logger.Error("internal_error", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "INVALID_GOAL_MODE", "Mode must be recommended or custom")
		return
	}

	goalML, err := h.engine.ForToday()
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("goal_updated", "mode", req.Mode, "goal_ml", goalML)

	writeJSON(w, http.StatusOK, dto.GoalResponse{
		GoalML: goalML,
		Mode:   req.Mode,
	})
}
