// Command swellctl is the SwellWatch operations CLI.
//
// Usage:
//
//	swellctl migrate
//	swellctl forecast --spot ipanema --days 3
//	swellctl tick
//	swellctl tide get --spot ipanema --date 2026-08-28
//	swellctl tide refresh --spot ipanema --date 2026-08-28
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/swellwatch/swellwatch/internal/config"
	"github.com/swellwatch/swellwatch/internal/db"
	"github.com/swellwatch/swellwatch/internal/forecast"
	"github.com/swellwatch/swellwatch/internal/notifications"
	"github.com/swellwatch/swellwatch/internal/provider/marine"
	"github.com/swellwatch/swellwatch/internal/provider/tides"
	"github.com/swellwatch/swellwatch/internal/scheduling"
	"github.com/swellwatch/swellwatch/internal/spot"
	"github.com/swellwatch/swellwatch/internal/tidecache"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "swellctl",
		Short: "SwellWatch operations CLI",
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(forecastCmd())
	root.AddCommand(tickCmd())
	root.AddCommand(tideCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// migrate command
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			start := time.Now()
			if err := db.Migrate(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("Migrations applied", "duration", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// forecast command
// --------------------------------------------------------------------------

func forecastCmd() *cobra.Command {
	var spotID string
	var days int
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Print the scored forecast for a spot as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if spotID == "" {
				return fmt.Errorf("--spot is required")
			}
			return run(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				svc := buildForecastService(cfg, pool)
				resp, err := svc.Forecast(ctx, spotID, days)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			})
		},
	}
	cmd.Flags().StringVar(&spotID, "spot", "", "Spot ID")
	cmd.Flags().IntVar(&days, "days", 3, "Forecast horizon in days")
	return cmd
}

// --------------------------------------------------------------------------
// tick command
// --------------------------------------------------------------------------

func tickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Run a single notification scheduler cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				spots := spot.NewStore(pool.Pool)
				schedulings := scheduling.NewStore(pool.Pool)
				devices := notifications.NewDeviceStore(pool.Pool)
				dedupe := notifications.NewPGDedupe(pool.Pool)
				history := notifications.NewPGHistory(pool.Pool)
				forecasts := buildForecastService(cfg, pool)

				sender := notifications.NewFCMSender(cfg.FCMCredentialsFile, logger)
				evaluator := notifications.NewEvaluator(forecasts, spots, dedupe, cfg.DefaultTimezone)
				sched := notifications.NewScheduler(
					schedulings, evaluator, sender, devices, dedupe, history, schedulings,
					notifications.SchedulerConfig{
						Budget:    cfg.TickBudget,
						Workers:   cfg.SchedulerWorkers,
						DefaultTZ: cfg.DefaultTimezone,
					}, logger)

				start := time.Now()
				sched.Tick(ctx)
				logger.Info("Tick finished", "duration", time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// tide command
// --------------------------------------------------------------------------

func tideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tide",
		Short: "Inspect and refresh the tide cache",
	}
	cmd.AddCommand(tideGetCmd())
	cmd.AddCommand(tideRefreshCmd())
	return cmd
}

func tideGetCmd() *cobra.Command {
	var spotID, date string
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Read a cached tide entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if spotID == "" || date == "" {
				return fmt.Errorf("--spot and --date are required")
			}
			day, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("--date must be YYYY-MM-DD, got %q", date)
			}
			return run(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				cache := buildTideCache(cfg, pool)
				entry, err := cache.Get(ctx, spotID, day)
				if err != nil {
					return fmt.Errorf("cache lookup for %s on %s: %w", spotID, date, err)
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entry)
			})
		},
	}
	cmd.Flags().StringVar(&spotID, "spot", "", "Spot ID")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD)")
	return cmd
}

func tideRefreshCmd() *cobra.Command {
	var spotID, date string
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch tide extremes from the provider and overwrite the cache entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if spotID == "" || date == "" {
				return fmt.Errorf("--spot and --date are required")
			}
			day, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("--date must be YYYY-MM-DD, got %q", date)
			}
			return run(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				spots := spot.NewStore(pool.Pool)
				profile, err := spots.Get(ctx, spotID)
				if err != nil {
					return err
				}

				client := tides.NewClient(cfg.TideBaseURL, cfg.TideAPIKey, cfg.ProviderRPM, logger)
				events, err := client.TideEvents(ctx, profile, day)
				if err != nil {
					return fmt.Errorf("fetch tide extremes: %w", err)
				}

				cache := buildTideCache(cfg, pool)
				if _, err := cache.Put(ctx, spotID, day, events, client.SourceTag()); err != nil {
					return fmt.Errorf("write cache entry: %w", err)
				}
				logger.Info("Tide cache refreshed", "spot", spotID, "date", date, "events", len(events))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&spotID, "spot", "", "Spot ID")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD)")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

func buildTideCache(cfg *config.Config, pool *db.Pool) *tidecache.Store {
	return tidecache.New(
		tidecache.NewPGStore(pool.Pool, cfg.TideCacheCollection),
		cfg.TideCacheTTL, logger)
}

func buildForecastService(cfg *config.Config, pool *db.Pool) *forecast.Service {
	spots := spot.NewStore(pool.Pool)
	marineClient := marine.NewClient(cfg.MarineBaseURL, cfg.ProviderRPM, logger)
	tideClient := tides.NewClient(cfg.TideBaseURL, cfg.TideAPIKey, cfg.ProviderRPM, logger)
	return forecast.NewService(marineClient, tideClient, buildTideCache(cfg, pool), spots, logger)
}

// run handles config loading, DB connection, and context cancellation.
func run(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
