package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dripline/dripline/internal/handler/dto"
	"github.com/dripline/dripline/internal/ledger"
	"github.com/dripline/dripline/internal/model"
)

// DrinkHandler handles HTTP requests for drink logging and custom drinks.
type DrinkHandler struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

// NewDrinkHandler creates a new DrinkHandler.
func NewDrinkHandler(l *ledger.Ledger, logger *slog.Logger) *DrinkHandler {
	return &DrinkHandler{
		ledger: l,
		logger: logger,
	}
}

// Add handles POST /v1/drinks.
func (h *DrinkHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.AddDrinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	result, err := h.ledger.AddDrink(req.Date, model.DrinkType(req.Type), req.AmountML, req.CustomDrinkID)
	if err != nil {
		h.handleLedgerError(w, err)
		return
	}

	h.logger.Info("drink_logged",
		"drink_id", result.Event.ID,
		"type", result.Event.Type,
		"amount_ml", result.Event.AmountML,
		"date", result.Record.Date,
	)

	writeJSON(w, http.StatusCreated, dto.AddDrinkResponse{
		Drink:    dto.ToDrinkResponse(result.Event),
		Day:      dto.ToDayResponse(result.Record),
		Unlocked: result.Unlocked,
	})
}

// Remove handles DELETE /v1/drinks/{id}. Removing an id that is already gone
// succeeds and returns the unchanged day.
func (h *DrinkHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Drink ID is required")
		return
	}

	record, err := h.ledger.RemoveDrink(r.URL.Query().Get("date"), id)
	if err != nil {
		h.handleLedgerError(w, err)
		return
	}
	if record == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.logger.Info("drink_removed", "drink_id", id, "date", record.Date)

	writeJSON(w, http.StatusOK, dto.ToDayResponse(record))
}

// ListCustomDrinks handles GET /v1/custom-drinks.
func (h *DrinkHandler) ListCustomDrinks(w http.ResponseWriter, r *http.Request) {
	drinks, err := h.ledger.CustomDrinks()
	if err != nil {
		h.handleLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drinks)
}

// CreateCustomDrink handles POST /v1/custom-drinks.
func (h *DrinkHandler) CreateCustomDrink(w http.ResponseWriter, r *http.Request) {
	var req dto.CustomDrinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	drink, err := h.ledger.CreateCustomDrink(req.Name, req.Color, req.Icon, req.HydrationMultiplier)
	if err != nil {
		h.handleLedgerError(w, err)
		return
	}

	h.logger.Info("custom_drink_created", "custom_drink_id", drink.ID, "name", drink.Name)

	writeJSON(w, http.StatusCreated, drink)
}

// UpdateCustomDrink handles PATCH /v1/custom-drinks/{id}.
func (h *DrinkHandler) UpdateCustomDrink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Custom drink ID is required")
		return
	}

	var req dto.CustomDrinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	drink, err := h.ledger.UpdateCustomDrink(id, req.Name, req.Color, req.Icon, req.HydrationMultiplier)
	if err != nil {
		h.handleLedgerError(w, err)
		return
	}

	h.logger.Info("custom_drink_updated", "custom_drink_id", drink.ID)

	writeJSON(w, http.StatusOK, drink)
}

// DeleteCustomDrink handles DELETE /v1/custom-drinks/{id}.
func (h *DrinkHandler) DeleteCustomDrink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Custom drink ID is required")
		return
	}

	if err := h.ledger.DeleteCustomDrink(id); err != nil {
		h.handleLedgerError(w, err)
		return
	}

	h.logger.Info("custom_drink_deleted", "custom_drink_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// handleLedgerError maps ledger errors to HTTP responses.
func (h *DrinkHandler) handleLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidDrinkType):
		writeError(w, http.StatusBadRequest, "INVALID_DRINK_TYPE", "Unknown drink type")
	case errors.Is(err, ledger.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be positive")
	case errors.Is(err, ledger.ErrInvalidMultiplier):
		writeError(w, http.StatusBadRequest, "INVALID_MULTIPLIER", "Hydration multiplier out of range")
	case errors.Is(err, ledger.ErrCustomDrinkNotFound):
		writeError(w, http.StatusNotFound, "CUSTOM_DRINK_NOT_FOUND", "Custom drink not found")
	case errors.Is(err, ledger.ErrDuplicateDrinkName):
		writeError(w, http.StatusConflict, "DUPLICATE_DRINK_NAME", "A custom drink with that name already exists")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
