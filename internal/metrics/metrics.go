// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScrapeAttempts counts page fetches per strategy and outcome ("success", "failure", "rejected").
	ScrapeAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parties247_scrape_attempts_total",
			Help: "Total number of third-party page fetch attempts",
		},
		[]string{"strategy", "outcome"},
	)

	ScrapeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parties247_scrape_duration_seconds",
			Help:    "Duration of a full scrape (fetch, parse, classify)",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		},
		[]string{"result"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "parties247_circuit_breaker_state",
			Help: "Circuit breaker state per fetch strategy (0=closed, 1=half-open, 2=open)",
		},
		[]string{"strategy"},
	)

	PartiesImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parties247_parties_imported_total",
			Help: "Parties imported from third-party pages by outcome",
		},
		[]string{"status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parties247_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
