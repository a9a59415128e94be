package handlers

import (
	"encoding/json"
	"net/http"

	"scamtrap-lab/internal/domain/services"
	"scamtrap-lab/internal/infrastructure/cache"
	"scamtrap-lab/internal/infrastructure/database"
	"scamtrap-lab/internal/infrastructure/database/repository"
	"scamtrap-lab/internal/streaming"
	"scamtrap-lab/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health   *HealthHandler
	Analyze  *AnalyzeHandler
	Sessions *SessionsHandler
	Reports  *ReportsHandler
	Monitor  *MonitorHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Honeypot *services.Honeypot
	Reports  *repository.ReportRepository
	Cache    *cache.RedisCache
	DB       *database.PostgresDB
	WSHub    *streaming.WebSocketHub
	Logger   *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Cache, deps.DB, deps.Logger),
		Analyze:  NewAnalyzeHandler(deps.Honeypot, deps.Logger),
		Sessions: NewSessionsHandler(deps.Honeypot, deps.Logger),
		Reports:  NewReportsHandler(deps.Reports, deps.Logger),
		Monitor:  NewMonitorHandler(deps.WSHub, deps.Logger),
	}
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
