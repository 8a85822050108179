// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ErrorsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_handled_total",
			Help: "Total number of errors processed by the global error handler",
		},
		[]string{"category", "severity"},
	)

	RetryAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts across all operations",
		},
	)

	ExternalCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_calls_total",
			Help: "Total number of outbound calls to external providers",
		},
		[]string{"provider", "outcome"},
	)

	ExternalCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "external_call_duration_seconds",
			Help: "Duration of outbound provider calls in seconds",
		},
		[]string{"provider"},
	)

	FallbacksUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallbacks_used_total",
			Help: "Total number of times a fallback value replaced a failed call",
		},
		[]string{"provider"},
	)

	CreditsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credits_consumed_total",
			Help: "Total credits consumed per operation type",
		},
		[]string{"operation"},
	)
)
