package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"scamtrap-lab/internal/api/handlers"
	apimiddleware "scamtrap-lab/internal/api/middleware"
	"scamtrap-lab/internal/config"
	"scamtrap-lab/internal/infrastructure/cache"
	"scamtrap-lab/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	cache    *cache.RedisCache
	logger   *logger.Logger
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, c *cache.RedisCache, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		cache:    c,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Rate limiting
	if r.config.RateLimit.Enabled && r.cache != nil {
		router.Use(apimiddleware.RateLimiter(r.cache, r.config.RateLimit))
	}

	// Public routes
	router.Group(func(pub chi.Router) {
		pub.Get("/health", r.handlers.Health.Check)
		pub.Get("/ready", r.handlers.Health.Ready)
	})

	// Live monitor WebSocket (dashboards, not the adversary)
	router.Get("/ws/monitor", r.handlers.Monitor.Serve)

	// API v1 routes, behind the decoy key check
	router.Route("/api/v1", func(api chi.Router) {
		api.Use(apimiddleware.APIKeyAuth(r.config.Auth, r.logger))

		// Conversation turns
		api.Post("/analyze", r.handlers.Analyze.Analyze)

		// Session inspection
		api.Route("/sessions", func(sessions chi.Router) {
			sessions.Get("/", r.handlers.Sessions.List)
			sessions.Get("/{id}", r.handlers.Sessions.Get)
			sessions.Get("/{id}/intel", r.handlers.Sessions.GetIntel)
			sessions.Get("/{id}/report", r.handlers.Sessions.GetReport)
		})

		// Archived reports
		api.Route("/reports", func(reports chi.Router) {
			reports.Get("/", r.handlers.Reports.List)
			reports.Get("/stats", r.handlers.Reports.Stats)
			reports.Get("/{id}", r.handlers.Reports.Get)
		})

		// Monitor status
		api.Get("/monitor/status", r.handlers.Monitor.Status)
	})

	return router
}
