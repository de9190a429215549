// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "signals"

// Interaction outcomes.
const (
	OutcomeCreated  = "created"
	OutcomeUpdated  = "updated"
	OutcomeRejected = "rejected"
	OutcomeNotFound = "not_found"
	OutcomeFailed   = "failed"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	interactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interactions_total",
			Help:      "Interaction events processed, by event type and outcome",
		},
		[]string{"interaction_type", "outcome"},
	)

	upsertRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upsert_retries_total",
			Help:      "Upserts retried after losing a concurrent create",
		},
	)

	recommendationCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendation_cache_total",
			Help:      "Recommendation cache lookups, by result",
		},
		[]string{"result"}, // hit, miss, error
	)

	upstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_upstream_duration_seconds",
			Help:      "Latency of calls to the recommendation scoring service",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"}, // ok, error
	)
)

// RecordHTTPRequest records HTTP RED metrics for one request.
func RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// LabelInvalid replaces interaction types outside the known set.
const LabelInvalid = "invalid"

// RecordInteraction counts one processed event.
func RecordInteraction(interactionType, outcome string) {
	interactionsTotal.WithLabelValues(interactionType, outcome).Inc()
}

// RecordUpsertRetry counts one retried upsert.
func RecordUpsertRetry() {
	upsertRetriesTotal.Inc()
}

// RecordCacheLookup counts one recommendation cache lookup.
func RecordCacheLookup(result string) {
	recommendationCacheTotal.WithLabelValues(result).Inc()
}

// RecordUpstreamRequest observes one call to the scoring service.
func RecordUpstreamRequest(ok bool, duration time.Duration) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	upstreamRequestDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// Middleware records HTTP metrics for every gin route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		// Route pattern keeps label cardinality bounded.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// Handler returns the Prometheus metrics handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
