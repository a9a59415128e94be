package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"scamtrap-lab/internal/api"
	"scamtrap-lab/internal/api/handlers"
	"scamtrap-lab/internal/callback"
	"scamtrap-lab/internal/config"
	"scamtrap-lab/internal/domain/services"
	"scamtrap-lab/internal/domain/services/ai"
	"scamtrap-lab/internal/domain/services/detection"
	"scamtrap-lab/internal/domain/services/extraction"
	"scamtrap-lab/internal/domain/services/intel"
	"scamtrap-lab/internal/infrastructure/cache"
	"scamtrap-lab/internal/infrastructure/database"
	"scamtrap-lab/internal/infrastructure/database/repository"
	"scamtrap-lab/internal/infrastructure/sessions"
	"scamtrap-lab/internal/streaming"
	"scamtrap-lab/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting ScamTrap Lab")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize infrastructure
	db, redisCache, err := initInfrastructure(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize infrastructure")
	}
	defer func() {
		if db != nil {
			db.Close()
		}
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	// Initialize the report archive (if database available)
	var reportRepo *repository.ReportRepository
	if db != nil {
		reportRepo = repository.NewReportRepository(db)
		if err := reportRepo.EnsureSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to ensure report schema, archiving disabled")
			reportRepo = nil
		} else {
			log.Info().Msg("report archive initialized with database")
		}
	} else {
		log.Warn().Msg("running without database - report archive unavailable")
	}

	// Initialize streaming infrastructure
	var natsPublisher *streaming.NATSPublisher
	if cfg.NATS.Enabled {
		var err error
		natsPublisher, err = streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing without real-time streaming")
		} else {
			log.Info().Str("url", cfg.NATS.URL).Msg("connected to NATS")
		}
	}

	// Create event bus for real-time updates
	eventBus := streaming.NewEventBus(natsPublisher, log)
	log.Info().Bool("nats_enabled", natsPublisher != nil).Msg("event bus initialized")

	// Create WebSocket hub for the live monitor
	wsHub := streaming.NewWebSocketHub(log)
	go wsHub.Run(ctx)

	// Session store backed by Redis
	sessionStore := sessions.NewRedisStore(redisCache, cfg.Sessions, log)

	// Initialize the extraction and detection pipeline
	extractor := extraction.NewExtractor(log)
	merger := intel.NewMerger(extractor, log)
	cascade := detection.NewCascade(cfg.Detection, log)
	engine := services.NewEngine(merger, cascade, log)

	// LLM client shared by the scam detector and the victim agent
	llmClient := ai.NewClient(cfg.LLM, log)
	detector := ai.NewDetector(llmClient, log)
	replies := ai.NewReplyGenerator(llmClient, log)
	log.Info().
		Bool("llm_enabled", cfg.LLM.Enabled).
		Str("model", cfg.LLM.Model).
		Msg("AI services initialized")

	// Final-report callback dispatcher
	dispatcher := callback.NewDispatcher(cfg.Callback, log)

	// Wire event publisher for real-time updates
	eventPublisher := streaming.NewEventBusPublisher(eventBus, wsHub)

	var archiver services.ReportArchiver
	if reportRepo != nil {
		archiver = reportRepo
	}

	honeypot := services.NewHoneypot(engine, sessionStore, detector, replies, eventPublisher, dispatcher, archiver, log)
	log.Info().Msg("honeypot service initialized")

	// Initialize handlers
	deps := handlers.Dependencies{
		Honeypot: honeypot,
		Reports:  reportRepo,
		Cache:    redisCache,
		DB:       db,
		WSHub:    wsHub,
		Logger:   log,
	}
	h := handlers.NewHandlers(deps)

	// Create router
	router := api.NewRouter(*cfg, h, redisCache, log)
	httpHandler := router.Setup()

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	// Cancel context to stop background services
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Stop HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}

// initInfrastructure initializes database and cache connections
func initInfrastructure(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.PostgresDB, *cache.RedisCache, error) {
	// Connect to PostgreSQL
	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to PostgreSQL, continuing without database")
		// Don't fail, continue without database for development
	}

	// Connect to Redis
	redisCache, err := cache.NewRedis(ctx, cfg.Redis, log)
	if err != nil {
		return db, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return db, redisCache, nil
}
