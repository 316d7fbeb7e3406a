// Package telemetry exposes Prometheus counters for operational visibility.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SearchesTotal counts search requests by category and cache outcome.
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobpulse_searches_total",
			Help: "Total number of search requests",
		},
		[]string{"category", "cached"},
	)

	// ExternalCallsTotal counts upstream search API calls by outcome.
	ExternalCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobpulse_external_calls_total",
			Help: "Total number of upstream search API fetch cycles",
		},
		[]string{"outcome"},
	)

	// HTTPRequestsTotal counts handled HTTP requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobpulse_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)

// Handler returns the /metrics scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
