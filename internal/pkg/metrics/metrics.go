// Package metrics defines the Prometheus metrics of the platform API gateway.
// It is the single source of truth for metric names, labels, and help strings.
//
// Metrics register with the default registry on import. The CLI can dump them
// to a node_exporter textfile with WriteTextfile.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal_client"

// ── Gateway metrics ───────────────────────────────────────────────────────────

// RequestsTotal counts gateway calls.
// Labels:
//   - operation: gateway operation name (e.g. "login", "onboarding_start")
//   - outcome: "ok", "rejected" (non-2xx answer) or "transport" (no answer)
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of platform API requests, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// RequestDuration measures round-trip time of a gateway call.
// Label:
//   - operation: gateway operation name
var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of platform API requests from send to body read.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// ResponseStatusTotal counts answers by HTTP status class.
// Label:
//   - class: "2xx", "4xx", "5xx", ...
var ResponseStatusTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_responses_total",
		Help:      "Total number of platform API responses, by status class.",
	},
	[]string{"class"},
)

// ── Draft store metrics ───────────────────────────────────────────────────────

// DraftOpsTotal counts draft store operations.
// Labels:
//   - op: "load", "save" or "clear"
//   - result: "ok", "miss", "stale" (discarded version) or "error"
var DraftOpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "draft_ops_total",
		Help:      "Total number of persisted draft operations, by op and result.",
	},
	[]string{"op", "result"},
)

// WriteTextfile writes every registered metric to path in the text
// exposition format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
