package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Billing API gateway metrics
var (
	// GatewayRequestsTotal tracks outbound billing API requests by operation and status
	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Outbound billing API requests by operation and status",
		},
		[]string{"operation", "status"},
	)

	// GatewayRequestDuration tracks billing API request latency in seconds
	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Billing API request duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)
)

// Session metrics
var (
	// LoginsTotal tracks login attempts by result (success, invalid, unverified, error)
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	// SessionState tracks the current session state (0=anonymous, 1=hydrating, 2=authenticated)
	SessionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "session_state",
			Help: "Current session state (0=anonymous, 1=hydrating, 2=authenticated)",
		},
	)

	// ForcedLogoutsTotal tracks forced session resets (hydration failures, explicit logouts)
	ForcedLogoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forced_logouts_total",
			Help: "Forced session resets by reason",
		},
		[]string{"reason"},
	)
)

// Token store metrics
var (
	// TokenStoreOpsTotal tracks credential store operations by operation and status
	TokenStoreOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_store_operations_total",
			Help: "Credential store operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// CircuitBreakerStateChanges tracks circuit breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current circuit breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)
