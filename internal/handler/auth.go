package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dripline/dripline/internal/handler/dto"
	"github.com/dripline/dripline/internal/ledger"
	"github.com/dripline/dripline/internal/metrics"
	"github.com/dripline/dripline/internal/model"
	"github.com/dripline/dripline/internal/remote"
	"github.com/dripline/dripline/internal/stats"
	"github.com/dripline/dripline/internal/store"
)

// AuthHandler handles backend authentication and manual sync.
type AuthHandler struct {
	remote   *remote.Client
	store    *store.Store
	ledger   *ledger.Ledger
	agg      *stats.Aggregator
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. A nil recorder falls back to noop.
func NewAuthHandler(rc *remote.Client, st *store.Store, l *ledger.Ledger, agg *stats.Aggregator, recorder metrics.Recorder, logger *slog.Logger) *AuthHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthHandler{
		remote:   rc,
		store:    st,
		ledger:   l,
		agg:      agg,
		recorder: recorder,
		logger:   logger,
	}
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "MISSING_CREDENTIALS", "Email and password are required")
		return
	}

	session, err := h.remote.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleRemoteError(w, err)
		return
	}

	h.logger.Info("logged_in", "backend_user_id", session.UserID)

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// Register handles POST /v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "MISSING_CREDENTIALS", "Email and password are required")
		return
	}

	session, err := h.remote.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.handleRemoteError(w, err)
		return
	}

	h.logger.Info("registered", "backend_user_id", session.UserID)

	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

// Logout handles POST /v1/auth/logout. Local day records and stats survive;
// only session state is dropped.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Logout(); err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("logged_out")

	w.WriteHeader(http.StatusNoContent)
}

// SyncStatus handles GET /v1/sync/status.
func (h *AuthHandler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	token, err := h.store.AuthToken()
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}
	userID, err := h.store.BackendUserID()
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.SyncStatusResponse{
		RemoteConfigured: h.remote != nil && h.remote.Configured(),
		Authenticated:    token != "",
		BackendUserID:    userID,
	})
}

// SyncRefresh handles POST /v1/sync/refresh: pull today's log entries, the
// backend stats summary, and custom drinks, then merge them into local state.
func (h *AuthHandler) SyncRefresh(w http.ResponseWriter, r *http.Request) {
	userID, err := h.remote.EnsureBackendUser(r.Context())
	if err != nil {
		h.recorder.IncSyncPull("failed")
		h.handleRemoteError(w, err)
		return
	}

	today := h.ledger.TodayKey()
	pulledDay, err := h.remote.FetchDayRecord(r.Context(), userID, today)
	if err != nil {
		h.recorder.IncSyncPull("failed")
		h.handleRemoteError(w, err)
		return
	}
	day, err := h.ledger.MergeRemoteDay(pulledDay)
	if err != nil {
		h.recorder.IncSyncPull("failed")
		h.logger.Error("sync_merge_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	var userStats *model.UserStats
	if pulled, err := h.remote.FetchHydrationStats(r.Context(), userID, 30); err != nil {
		h.logger.Warn("stats_pull_failed", "error", err)
	} else if userStats, err = h.agg.MergeBackend(pulled); err != nil {
		h.logger.Warn("stats_merge_failed", "error", err)
		userStats = nil
	}
	if userStats == nil {
		if userStats, err = h.store.Stats(); err != nil {
			h.recorder.IncSyncPull("failed")
			h.logger.Error("internal_error", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
			return
		}
	}

	if err := h.remote.PullCustomDrinks(r.Context(), userID); err != nil {
		h.logger.Warn("custom_drink_pull_failed", "error", err)
	}

	h.recorder.IncSyncPull("success")
	h.logger.Info("sync_refreshed", "date", today, "backend_user_id", userID)

	writeJSON(w, http.StatusOK, map[string]any{
		"day":   dto.ToDayResponse(day),
		"stats": userStats,
	})
}

// handleRemoteError maps backend client errors to HTTP responses.
func (h *AuthHandler) handleRemoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, remote.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "REMOTE_NOT_CONFIGURED", "No backend is configured")
	case errors.Is(err, remote.ErrAuthInvalid):
		writeError(w, http.StatusUnauthorized, "AUTH_INVALID", "Backend rejected the credentials or session")
	case errors.Is(err, remote.ErrUnavailable):
		writeError(w, http.StatusBadGateway, "BACKEND_UNAVAILABLE", "Backend is unavailable")
	default:
		h.logger.Error("remote_error", "error", err)
		writeError(w, http.StatusBadGateway, "BACKEND_ERROR", "Backend request failed")
	}
}

func toSessionResponse(session *remote.Session) dto.SessionResponse {
	return dto.SessionResponse{
		UserID:     session.UserID,
		Name:       session.Name,
		Email:      session.Email,
		HasProfile: session.HasProfile,
	}
}
