// Command api is the SwellWatch API server.
//
// Usage:
//
//	swellwatch-api
//	API_PORT=8080 swellwatch-api

// @title SwellWatch API
// @version 1.0.0
// @description Surf forecast scoring and notification scheduling API. Serves per-spot scored forecasts and surf windows, and runs the background notification scheduler.
// @host localhost:8000
// @BasePath /
// @schemes http https
// @contact.name SwellWatch
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/swellwatch/swellwatch/internal/api"
	"github.com/swellwatch/swellwatch/internal/api/handler"
	"github.com/swellwatch/swellwatch/internal/config"
	"github.com/swellwatch/swellwatch/internal/db"
	"github.com/swellwatch/swellwatch/internal/forecast"
	"github.com/swellwatch/swellwatch/internal/maintenance"
	"github.com/swellwatch/swellwatch/internal/notifications"
	"github.com/swellwatch/swellwatch/internal/provider/marine"
	"github.com/swellwatch/swellwatch/internal/provider/tides"
	"github.com/swellwatch/swellwatch/internal/scheduling"
	"github.com/swellwatch/swellwatch/internal/spot"
	"github.com/swellwatch/swellwatch/internal/tidecache"

	_ "github.com/swellwatch/swellwatch/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Stores
	spots := spot.NewStore(pool.Pool)
	schedulings := scheduling.NewStore(pool.Pool)
	devices := notifications.NewDeviceStore(pool.Pool)
	dedupe := notifications.NewPGDedupe(pool.Pool)
	history := notifications.NewPGHistory(pool.Pool)

	// Forecast pipeline: marine provider + tide source behind a TTL cache
	tideCache := tidecache.New(
		tidecache.NewPGStore(pool.Pool, cfg.TideCacheCollection),
		cfg.TideCacheTTL, logger)
	marineClient := marine.NewClient(cfg.MarineBaseURL, cfg.ProviderRPM, logger)
	tideClient := tides.NewClient(cfg.TideBaseURL, cfg.TideAPIKey, cfg.ProviderRPM, logger)
	forecasts := forecast.NewService(marineClient, tideClient, tideCache, spots, logger)

	// Notification scheduler
	fcmSender := notifications.NewFCMSender(cfg.FCMCredentialsFile, logger)
	evaluator := notifications.NewEvaluator(forecasts, spots, dedupe, cfg.DefaultTimezone)
	scheduler := notifications.NewScheduler(
		schedulings, evaluator, fcmSender, devices, dedupe, history, schedulings,
		notifications.SchedulerConfig{
			Interval:  cfg.TickInterval,
			Budget:    cfg.TickBudget,
			Workers:   cfg.SchedulerWorkers,
			DefaultTZ: cfg.DefaultTimezone,
		}, logger)
	go scheduler.Run(ctx)

	// Start maintenance tickers (record cleanup, tide cache sweep)
	go maintenance.Start(ctx, pool.Pool, cfg.TideCacheCollection, maintenance.DefaultConfig(), logger)

	// Create router
	router := api.NewRouter(handler.Deps{
		Pool:        pool.Pool,
		Forecasts:   forecasts,
		Spots:       spots,
		Schedulings: schedulings,
		Devices:     devices,
	}, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting SwellWatch API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
