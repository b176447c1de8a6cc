// Package handler provides HTTP handlers for all API endpoints.
package handler

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swellwatch/swellwatch/internal/api/respond"
	"github.com/swellwatch/swellwatch/internal/config"
	"github.com/swellwatch/swellwatch/internal/forecast"
	"github.com/swellwatch/swellwatch/internal/notifications"
	"github.com/swellwatch/swellwatch/internal/scheduling"
	"github.com/swellwatch/swellwatch/internal/spot"
)

// Deps bundles the services and stores handlers depend on.
type Deps struct {
	Pool        *pgxpool.Pool
	Forecasts   *forecast.Service
	Spots       *spot.Store
	Schedulings *scheduling.Store
	Devices     *notifications.DeviceStore
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	pool        *pgxpool.Pool
	forecasts   *forecast.Service
	spots       *spot.Store
	schedulings *scheduling.Store
	devices     *notifications.DeviceStore
	cfg         *config.Config
}

// New creates a Handler with shared dependencies.
func New(deps Deps, cfg *config.Config) *Handler {
	return &Handler{
		pool:        deps.Pool,
		forecasts:   deps.Forecasts,
		spots:       deps.Spots,
		schedulings: deps.Schedulings,
		devices:     deps.Devices,
		cfg:         cfg,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "SwellWatch API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	var n int
	err := h.pool.QueryRow(r.Context(), "health_check").Scan(&n)
	if err != nil {
		respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
