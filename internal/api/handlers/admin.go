package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/brandt/screener/backend/internal/contracts"
	"github.com/brandt/screener/backend/internal/ingest"
	"github.com/brandt/screener/backend/pkg/logger"
)

// IngestRunner triggers ingestion runs and reports their progress.
type IngestRunner interface {
	RunFullAsync() error
	RefreshQuotes(ctx context.Context) error
	Progress() contracts.IngestionProgress
}

// AdminHandler serves the data-management endpoints
type AdminHandler struct {
	ingest    IngestRunner
	companies contracts.CompanyRepository
	snapshots contracts.SnapshotRepository
	watchlist contracts.WatchlistRepository
	logger    *logger.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	runner IngestRunner,
	companies contracts.CompanyRepository,
	snapshots contracts.SnapshotRepository,
	watchlist contracts.WatchlistRepository,
	log *logger.Logger,
) *AdminHandler {
	return &AdminHandler{
		ingest:    runner,
		companies: companies,
		snapshots: snapshots,
		watchlist: watchlist,
		logger:    log,
	}
}

// Ingest starts a full ingestion in the background
// POST /api/admin/ingest
func (h *AdminHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	if err := h.ingest.RunFullAsync(); err != nil {
		if errors.Is(err, ingest.ErrAlreadyRunning) {
			respondError(w, http.StatusConflict, "An ingestion is already running")
			return
		}
		h.logger.WithError(err).Error("Failed to start ingestion")
		respondError(w, http.StatusInternalServerError, "Failed to start ingestion")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ingestion_started",
		"message": "Full data ingestion started in background",
	})
}

// UpdateQuotes starts a quote refresh in the background
// POST /api/admin/update-quotes
func (h *AdminHandler) UpdateQuotes(w http.ResponseWriter, r *http.Request) {
	go func() {
		if err := h.ingest.RefreshQuotes(context.Background()); err != nil {
			h.logger.WithError(err).Error("Quote update failed")
		}
	}()

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "update_started",
		"message": "Quote update started in background",
	})
}

// Progress reports the state of the current or last ingestion run
// GET /api/admin/ingest/progress
func (h *AdminHandler) Progress(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.ingest.Progress())
}

// Stats returns database coverage counts
// GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companies, err := h.companies.Count(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to count companies")
		respondError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	screened, err := h.snapshots.Count(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to count snapshots")
		respondError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	watched, err := h.watchlist.Count(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to count watchlist")
		respondError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{
		"total_companies":    companies,
		"screened_companies": screened,
		"watchlist_count":    watched,
	})
}
