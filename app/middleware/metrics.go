package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Total facade requests partitioned by method, route, and status code
	facadeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "onboarding",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests processed by the facade",
		},
		[]string{"method", "route", "status"},
	)

	// Request duration in seconds partitioned by method, route, and status code
	facadeRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "onboarding",
			Name:      "http_request_duration_seconds",
			Help:      "Facade request latencies in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// In-flight facade requests
	facadeInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "onboarding",
			Name:      "http_inflight_requests",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Engine-level counters, incremented from the handlers.
	StageResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "onboarding",
			Name:      "stage_resolutions_total",
			Help:      "Stage resolver decisions by dashboard and stage",
		},
		[]string{"dashboard", "stage"},
	)

	GateSettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "onboarding",
			Name:      "gate_settlements_total",
			Help:      "Profile gate settlements by outcome",
		},
		[]string{"outcome"},
	)
)

// Metrics returns a Fiber v3 middleware that records basic Prometheus metrics.
// Labels are kept low-cardinality by using the matched route path when available.
func Metrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		facadeInFlight.Inc()
		defer facadeInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path // Use route template to avoid high cardinality
		}

		labels := prometheus.Labels{
			"method": c.Method(),
			"route":  route,
			"status": strconv.Itoa(status),
		}
		facadeRequestsTotal.With(labels).Inc()
		facadeRequestDuration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}
}
