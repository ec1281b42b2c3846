// Package metrics holds the prometheus collectors shared by the recipe cache
// and the HTTP layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup results.
const (
	ResultHit      = "hit"
	ResultMiss     = "miss"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// Upstream fetch outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
)

var (
	// Recipe cache metrics
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_cache_lookups_total",
			Help: "Recipe lookups by result (hit, miss, not_found, error)",
		},
		[]string{"result"},
	)

	UpstreamFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_upstream_fetches_total",
			Help: "Calls to the recipe provider by outcome",
		},
		[]string{"outcome"},
	)

	UpstreamFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipe_upstream_fetch_duration_seconds",
			Help:    "Latency of recipe provider calls including retries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	NormalizationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_normalization_failures_total",
			Help: "Provider payloads rejected by the normalizer",
		},
	)

	StorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_storage_errors_total",
			Help: "Recipe store faults by operation",
		},
		[]string{"op"},
	)

	CoalescedRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_coalesced_requests_total",
			Help: "Cache misses that joined an in-flight fetch instead of calling the provider",
		},
	)

	// HTTP request metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
