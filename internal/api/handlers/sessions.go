package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scamtrap-lab/internal/domain/models"
	"scamtrap-lab/internal/domain/services"
	"scamtrap-lab/internal/infrastructure/sessions"
	"scamtrap-lab/pkg/logger"
)

// SessionsHandler exposes stored conversation state for inspection
type SessionsHandler struct {
	honeypot *services.Honeypot
	logger   *logger.Logger
}

// NewSessionsHandler creates a new SessionsHandler
func NewSessionsHandler(hp *services.Honeypot, log *logger.Logger) *SessionsHandler {
	return &SessionsHandler{
		honeypot: hp,
		logger:   log.WithComponent("sessions-handler"),
	}
}

// List handles GET /api/v1/sessions
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.honeypot.ActiveSessions(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list sessions")
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": ids,
		"count":    len(ids),
	})
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// GetIntel handles GET /api/v1/sessions/{id}/intel
func (h *SessionsHandler) GetIntel(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId":    sess.ID,
		"intelligence": sess.Intelligence,
		"detection":    sess.Detection,
		"scamType":     sess.ScamType,
	})
}

// GetReport handles GET /api/v1/sessions/{id}/report, returning the
// report as it would be delivered to the callback URL.
func (h *SessionsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.honeypot.BuildReport(sess))
}

func (h *SessionsHandler) load(w http.ResponseWriter, r *http.Request) (*models.Session, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return nil, false
	}

	s, err := h.honeypot.Session(r.Context(), id)
	if errors.Is(err, sessions.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", id).Msg("failed to load session")
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return nil, false
	}
	return s, true
}
