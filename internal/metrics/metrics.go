// Package metrics defines the Prometheus collectors exposed at /metrics.
// Collectors are package-level and registered once via promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TideCacheHits counts tide cache reads served from a valid entry.
	TideCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swellwatch_tide_cache_hits_total",
		Help: "Tide cache reads served from a valid cached document.",
	})

	// TideCacheMisses counts tide cache reads that fell through to the
	// upstream tide source (absent, expired, or unreadable entries).
	TideCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swellwatch_tide_cache_misses_total",
		Help: "Tide cache reads treated as a miss.",
	})

	// SchedulerTicks counts notification scheduler evaluation cycles.
	SchedulerTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swellwatch_scheduler_ticks_total",
		Help: "Notification scheduler tick cycles run.",
	})

	// NotificationsDispatched counts dispatch decisions by notification type.
	NotificationsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swellwatch_notifications_dispatched_total",
		Help: "Notifications dispatched, labeled by type.",
	}, []string{"type"})

	// EvaluationFailures counts schedulings skipped during a tick because
	// their evaluation failed.
	EvaluationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swellwatch_scheduling_evaluation_failures_total",
		Help: "Scheduling evaluations that failed and were skipped.",
	})

	// SendFailures counts notifier delivery errors.
	SendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swellwatch_notification_send_failures_total",
		Help: "Notifier send calls that returned an error.",
	})
)

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
