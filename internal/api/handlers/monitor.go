package handlers

import (
	"net/http"

	"scamtrap-lab/internal/streaming"
	"scamtrap-lab/pkg/logger"
)

// MonitorHandler serves the live-monitor WebSocket endpoint
type MonitorHandler struct {
	hub    *streaming.WebSocketHub
	logger *logger.Logger
}

// NewMonitorHandler creates a new MonitorHandler. hub may be nil when
// streaming is disabled.
func NewMonitorHandler(hub *streaming.WebSocketHub, log *logger.Logger) *MonitorHandler {
	return &MonitorHandler{
		hub:    hub,
		logger: log.WithComponent("monitor-handler"),
	}
}

// Serve handles GET /ws/monitor
func (h *MonitorHandler) Serve(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		writeError(w, http.StatusServiceUnavailable, "monitoring not enabled")
		return
	}
	h.hub.ServeWebSocket(w, r)
}

// Status handles GET /api/v1/monitor/status
func (h *MonitorHandler) Status(w http.ResponseWriter, r *http.Request) {
	clients := 0
	if h.hub != nil {
		clients = h.hub.ClientCount()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"enabled": h.hub != nil,
		"clients": clients,
	})
}
