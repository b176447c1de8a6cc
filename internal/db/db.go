// Package db provides a pgxpool-based connection pool with prepared
// statement registration, health checking, and embedded schema migrations.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swellwatch/swellwatch/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers the hot-path statements shared by
// the API and the notification scheduler. Prepared statements eliminate
// parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	const spotColumns = `
		id, name, region_id, timezone, lat, lon,
		swell_height_min, swell_height_max, swell_directions,
		swell_period_min, swell_period_max, offshore_wind_dir,
		tide_ideal_min, tide_ideal_max, created_at, updated_at`

	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Spots
		"spot_by_id":      "SELECT " + spotColumns + " FROM spots WHERE id = $1",
		"spots_all":       "SELECT " + spotColumns + " FROM spots ORDER BY name",
		"spots_by_region": "SELECT " + spotColumns + " FROM spots WHERE region_id = $1 ORDER BY name",

		// Devices
		"user_device_tokens": "SELECT token FROM user_devices WHERE user_id = $1 AND is_active = true",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
