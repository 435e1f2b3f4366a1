// Package metrics exposes the Prometheus instruments of the API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yamdb_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Domain Metrics
	ReviewWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_review_writes_total",
			Help: "Total number of committed review writes",
		},
		[]string{"operation"}, // "create", "update", "delete"
	)

	RatingRecomputes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yamdb_rating_recomputes_total",
			Help: "Total number of title rating recomputes",
		},
	)

	Signups = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yamdb_signups_total",
			Help: "Total number of confirmation codes issued",
		},
	)

	TokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yamdb_tokens_issued_total",
			Help: "Total number of access tokens issued",
		},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"route"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordReviewWrite counts a committed review write
func RecordReviewWrite(operation string) {
	ReviewWrites.WithLabelValues(operation).Inc()
}
