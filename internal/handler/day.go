package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dripline/dripline/internal/handler/dto"
	"github.com/dripline/dripline/internal/ledger"
)

// DayHandler serves day record reads.
type DayHandler struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

// NewDayHandler creates a new DayHandler.
func NewDayHandler(l *ledger.Ledger, logger *slog.Logger) *DayHandler {
	return &DayHandler{
		ledger: l,
		logger: logger,
	}
}

// Get handles GET /v1/days/{date}. The literal "today" resolves to the
// current day in the configured timezone. Untracked days come back empty
// rather than 404, carrying the goal that would apply.
func (h *DayHandler) Get(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if date == "today" {
		date = h.ledger.TodayKey()
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_DATE", "Date must be YYYY-MM-DD")
		return
	}

	record, err := h.ledger.Day(date)
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToDayResponse(record))
}

// SetGoal handles PUT /v1/days/{date}/goal: a one-day goal override that
// leaves the recommended goal for other days untouched.
func (h *DayHandler) SetGoal(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if date == "today" {
		date = h.ledger.TodayKey()
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_DATE", "Date must be YYYY-MM-DD")
		return
	}

	var req dto.SetDayGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if req.GoalML <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_GOAL", "goal_ml must be positive")
		return
	}

	record, err := h.ledger.SetDayGoal(date, req.GoalML)
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("day_goal_overridden", "date", date, "goal_ml", req.GoalML)

	writeJSON(w, http.StatusOK, dto.ToDayResponse(record))
}

// List handles GET /v1/days: every tracked day, newest first.
func (h *DayHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.ledger.Days()
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	days := make([]dto.DayResponse, 0, len(records))
	for _, record := range records {
		days = append(days, dto.ToDayResponse(record))
	}
	writeJSON(w, http.StatusOK, days)
}
