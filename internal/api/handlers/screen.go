package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/brandt/screener/backend/internal/contracts"
	"github.com/brandt/screener/backend/internal/screener"
	"github.com/brandt/screener/backend/pkg/logger"
)

// Screener runs screen queries and describes the screenable fields.
type Screener interface {
	Screen(ctx context.Context, req contracts.ScreenRequest) (*contracts.ScreenResponse, error)
	FieldCatalog() map[string]screener.FieldDef
}

// ScreenHandler serves screen queries and the field catalog
type ScreenHandler struct {
	screener Screener
	logger   *logger.Logger
}

// NewScreenHandler creates a new screen handler
func NewScreenHandler(svc Screener, log *logger.Logger) *ScreenHandler {
	return &ScreenHandler{
		screener: svc,
		logger:   log,
	}
}

// Screen filters, sorts and paginates the screening snapshots
// POST /api/screen
func (h *ScreenHandler) Screen(w http.ResponseWriter, r *http.Request) {
	var req contracts.ScreenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.screener.Screen(r.Context(), req)
	if err != nil {
		if screener.IsRequestError(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).Error("Screen query failed")
		respondError(w, http.StatusInternalServerError, "Failed to run screen")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Fields returns the screenable field catalog
// GET /api/fields
func (h *ScreenHandler) Fields(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.screener.FieldCatalog())
}
