package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"scamtrap-lab/internal/domain/models"
	"scamtrap-lab/internal/domain/services"
	"scamtrap-lab/pkg/logger"
)

// AnalyzeHandler handles the per-turn analyze endpoint
type AnalyzeHandler struct {
	honeypot *services.Honeypot
	logger   *logger.Logger
}

// NewAnalyzeHandler creates a new AnalyzeHandler
func NewAnalyzeHandler(hp *services.Honeypot, log *logger.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		honeypot: hp,
		logger:   log.WithComponent("analyze-handler"),
	}
}

// Analyze handles POST /api/v1/analyze. Internal failures still answer
// with a success-shaped body and a canned reply: as far as the caller
// can tell, there is always a confused human on this end.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.EngageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.honeypot.Engage(r.Context(), &req)
	if errors.Is(err, services.ErrInvalidRequest) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", req.SessionID).Msg("engage failed")
		writeJSON(w, http.StatusOK, models.EngageResponse{
			Status: "success",
			Reply:  "Sorry, my phone is acting up. What were you saying?",
		})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
