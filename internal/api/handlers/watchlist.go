package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/guregu/null/v5"

	"github.com/brandt/screener/backend/internal/contracts"
	"github.com/brandt/screener/backend/pkg/logger"
)

// WatchlistHandler serves the watchlist endpoints
type WatchlistHandler struct {
	watchlist contracts.WatchlistRepository
	companies contracts.CompanyRepository
	logger    *logger.Logger
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(watchlist contracts.WatchlistRepository, companies contracts.CompanyRepository, log *logger.Logger) *WatchlistHandler {
	return &WatchlistHandler{
		watchlist: watchlist,
		companies: companies,
		logger:    log,
	}
}

// List returns all watched companies, newest first
// GET /api/watchlist
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.watchlist.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list watchlist")
		respondError(w, http.StatusInternalServerError, "Failed to list watchlist")
		return
	}
	if items == nil {
		items = []contracts.WatchlistItem{}
	}

	respondJSON(w, http.StatusOK, items)
}

// AddWatchlistRequest identifies a company by ticker. Exchange narrows
// the lookup when the same ticker trades on several exchanges.
type AddWatchlistRequest struct {
	Ticker      string     `json:"ticker"`
	Exchange    string     `json:"exchange"`
	Note        string     `json:"note"`
	TargetPrice null.Float `json:"target_price"`
}

// Add puts a company on the watchlist
// POST /api/watchlist
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddWatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		respondError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	ctx := r.Context()

	company, err := h.companies.FindByTicker(ctx, ticker, req.Exchange)
	if err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Unknown ticker")
			return
		}
		h.logger.WithError(err).Error("Failed to resolve ticker")
		respondError(w, http.StatusInternalServerError, "Failed to add to watchlist")
		return
	}

	item, err := h.watchlist.Add(ctx, company.ID, req.Note, req.TargetPrice)
	if err != nil {
		if errors.Is(err, contracts.ErrDuplicate) {
			respondError(w, http.StatusConflict, "Company is already on the watchlist")
			return
		}
		h.logger.WithError(err).Error("Failed to add to watchlist")
		respondError(w, http.StatusInternalServerError, "Failed to add to watchlist")
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// Remove deletes a watchlist entry
// DELETE /api/watchlist/{id}
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	if err := h.watchlist.Remove(r.Context(), id); err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Watchlist entry not found")
			return
		}
		h.logger.WithError(err).Error("Failed to remove watchlist entry")
		respondError(w, http.StatusInternalServerError, "Failed to remove watchlist entry")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "removed",
		"id":     id,
	})
}
