package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records login attempts by result (success|failure|unverified).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_auth_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// CodeValidations counts signed-code checks by purpose (verify|recovery) and outcome.
	CodeValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_code_validations_total",
			Help: "Total number of signed code validations",
		},
		[]string{"purpose", "result"},
	)

	// ActiveTokens tracks issued tokens that have not been revoked.
	ActiveTokens = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wedding_active_tokens",
			Help: "Number of usable bearer tokens",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wedding_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
