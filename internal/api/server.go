// Package api wires the chi router, middleware stack, and handlers.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/swellwatch/swellwatch/internal/api/handler"
	"github.com/swellwatch/swellwatch/internal/config"
	"github.com/swellwatch/swellwatch/internal/metrics"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(deps handler.Deps, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "Link", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(deps, cfg)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
	})

	// Prometheus metrics
	r.Handle("/metrics", metrics.Handler())

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Forecasts
		r.Get("/forecast/{spotID}", h.GetForecast)

		// Spot catalog
		r.Get("/spots", h.ListSpots)
		r.Get("/spots/{spotID}", h.GetSpot)

		// Schedulings
		r.Route("/schedulings", func(r chi.Router) {
			r.Post("/", h.CreateScheduling)
			r.Get("/{schedulingID}", h.GetScheduling)
			r.Put("/{schedulingID}", h.UpdateScheduling)
			r.Delete("/{schedulingID}", h.DeleteScheduling)
		})
		r.Get("/users/{userID}/schedulings", h.ListUserSchedulings)

		// Device registration
		r.Post("/devices", h.RegisterDevice)
	})

	return r
}
