// Package metrics holds the Prometheus collectors shared by the upstream
// clients, the credential providers and the HTTP server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ops_atlas"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

var (
	// UpstreamRequests counts outbound calls.
	// Labels:
	//   - upstream: "ga4", "google-oauth", "shopify", "xero", "xero-identity"
	//   - outcome: "success" (2xx), "failure" (non-2xx), "error" (transport)
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream API requests",
		},
		[]string{"upstream", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of upstream API requests in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"upstream"},
	)

	CredentialAcquisitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credential_acquisitions_total",
			Help:      "Total number of credential acquisitions by strategy",
		},
		[]string{"strategy", "outcome"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of inbound HTTP requests",
		},
		[]string{"route", "code"},
	)
)

// Outcome maps an error to the outcome label.
func Outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
