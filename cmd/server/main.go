package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/motorline/boost/internal/config"
	"github.com/motorline/boost/internal/database"
	"github.com/motorline/boost/internal/handler"
	"github.com/motorline/boost/internal/scheduler"
	"github.com/motorline/boost/internal/service"
	"github.com/motorline/boost/internal/webhook"
	"github.com/motorline/boost/internal/worker"
	"github.com/motorline/boost/pkg/middleware"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	config.InitLogger(cfg)

	slog.Info("Starting Boost Bump Service", "version", version)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to MongoDB
	db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			slog.Error("Failed to disconnect from MongoDB", "error", err)
		}
	}()

	// Create indexes
	if err := database.CreateIndexes(ctx, db); err != nil {
		slog.Error("Failed to create indexes", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	adRepo := database.NewAdRepository(db)
	scheduleRepo := database.NewScheduleRepository(db)
	eventRepo := database.NewEventRepository(db)
	lockRepo := database.NewLockRepository(db)
	bumpStore := database.NewBumpStore(db, cfg.MongoTransactions)

	// Initialize webhook notification pipeline (optional)
	var notifier service.Notifier
	var notificationPool *worker.Pool
	if cfg.WebhookURL != "" {
		dispatcher := webhook.NewDispatcher(cfg.WebhookURL, cfg.WebhookTimeout, webhook.RetryConfig{
			MaxAttempts:    cfg.WebhookMaxAttempts,
			InitialDelayMs: cfg.WebhookInitialDelayMs,
			MaxDelayMs:     cfg.WebhookMaxDelayMs,
		})
		notificationPool = worker.NewPool(cfg.WorkerPoolSize, cfg.NotificationQueueSize, func(ctx context.Context, job worker.Job) error {
			return dispatcher.Send(ctx, webhook.NewBumpPayload(job.Event, job.Ad))
		})
		notificationPool.Start()
		notifier = webhook.NewNotifier(notificationPool)
	}

	// Initialize services
	adService := service.NewAdService(adRepo)
	eventService := service.NewEventService(eventRepo)
	bumpService := service.NewBumpService(adRepo, scheduleRepo, bumpStore, eventRepo, notifier)

	// Initialize scheduler
	sched := scheduler.NewScheduler(cfg, scheduleRepo, lockRepo, bumpService)
	if err := sched.Start(ctx); err != nil {
		slog.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	// Initialize handlers
	adHandler := handler.NewAdHandler(adService)
	bumpHandler := handler.NewBumpHandler(bumpService)
	historyHandler := handler.NewHistoryHandler(eventService)
	healthHandler := handler.NewHealthHandler(db, version)

	// Create CORS config
	corsConfig := middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   cfg.CORSAllowedMethods,
		AllowedHeaders:   cfg.CORSAllowedHeaders,
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           cfg.CORSMaxAge,
	}

	// Create router
	router := handler.NewRouter(
		adHandler,
		bumpHandler,
		historyHandler,
		healthHandler,
		corsConfig,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	// Start server in goroutine
	go func() {
		slog.Info("Starting HTTP server", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	slog.Info("Received shutdown signal, initiating graceful shutdown")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop scheduler first (wait for the in-flight tick)
	slog.Info("Stopping scheduler...")
	sched.Stop(shutdownCtx)

	// Shutdown HTTP server
	slog.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Drain pending notifications
	if notificationPool != nil {
		notificationPool.Stop()
	}

	slog.Info("Boost Bump Service stopped")
}
