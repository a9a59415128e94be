package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"scamtrap-lab/internal/infrastructure/database/repository"
	"scamtrap-lab/pkg/logger"
)

// ReportsHandler serves the archived-report endpoints
type ReportsHandler struct {
	repo   *repository.ReportRepository
	logger *logger.Logger
}

// NewReportsHandler creates a new ReportsHandler. repo may be nil when
// Postgres is not configured.
func NewReportsHandler(repo *repository.ReportRepository, log *logger.Logger) *ReportsHandler {
	return &ReportsHandler{
		repo:   repo,
		logger: log.WithComponent("reports-handler"),
	}
}

func (h *ReportsHandler) available(w http.ResponseWriter) bool {
	if h.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "report archive not configured")
		return false
	}
	return true
}

// List handles GET /api/v1/reports
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	reports, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list reports")
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reports": reports,
		"count":   len(reports),
	})
}

// Get handles GET /api/v1/reports/{id}
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	rep, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("report_id", id.String()).Msg("failed to load report")
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// Stats handles GET /api/v1/reports/stats
func (h *ReportsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	stats, err := h.repo.Stats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute report stats")
		writeError(w, http.StatusInternalServerError, "failed to compute report stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
