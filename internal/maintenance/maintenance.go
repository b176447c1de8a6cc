// Package maintenance runs periodic background tasks as Go tickers. All
// scheduled cleanup is driven from Go since the API is already a
// persistent, long-running service - no pg_cron needed.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	CleanupInterval   time.Duration // Old notification + dedupe rows
	TideSweepInterval time.Duration // Physically expired tide cache documents
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		CleanupInterval:   30 * time.Minute,
		TideSweepInterval: 1 * time.Hour,
	}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, pool *pgxpool.Pool, collection string, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"cleanup", cfg.CleanupInterval, "tide_sweep", cfg.TideSweepInterval)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	if cfg.CleanupInterval > 0 {
		t := time.NewTicker(cfg.CleanupInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { cleanup(ctx, pool, logger) })
	}

	if cfg.TideSweepInterval > 0 {
		t := time.NewTicker(cfg.TideSweepInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { sweepTideCache(ctx, pool, collection, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

// cleanup removes notification history older than 30 days and dedupe
// markers older than 7 days. Dedupe rows only need to outlive their local
// calendar day; a week covers any timezone skew.
func cleanup(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) {
	tag, err := pool.Exec(ctx, `
		DELETE FROM notifications
		WHERE status IN ('sent', 'failed')
		  AND created_at < NOW() - INTERVAL '30 days'`)
	if err != nil {
		logger.Warn("Cleanup: failed to purge old notifications", "error", err)
	} else if tag.RowsAffected() > 0 {
		logger.Info("Cleanup: purged old notifications", "count", tag.RowsAffected())
	}

	tag, err = pool.Exec(ctx, `
		DELETE FROM notification_dedupe
		WHERE created_at < NOW() - INTERVAL '7 days'`)
	if err != nil {
		logger.Warn("Cleanup: failed to purge old dedupe markers", "error", err)
	} else if tag.RowsAffected() > 0 {
		logger.Info("Cleanup: purged old dedupe markers", "count", tag.RowsAffected())
	}
}

// sweepTideCache deletes physically expired tide documents. Purely
// opportunistic: reads already treat expired entries as absent, so
// correctness never depends on this sweep.
func sweepTideCache(ctx context.Context, pool *pgxpool.Pool, collection string, logger *slog.Logger) {
	sql := fmt.Sprintf(`
		DELETE FROM %s
		WHERE (doc->>'expires_at')::timestamptz < NOW() - INTERVAL '1 day'`, collection)
	tag, err := pool.Exec(ctx, sql)
	if err != nil {
		logger.Warn("Tide sweep: failed", "error", err)
	} else if tag.RowsAffected() > 0 {
		logger.Info("Tide sweep: removed expired documents", "count", tag.RowsAffected())
	}
}
