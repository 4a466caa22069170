// Package metrics provides Prometheus metrics for the training service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fmcp"

var (
	// SessionsCreatedTotal tracks training sessions started
	SessionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "training",
			Name:      "sessions_created_total",
			Help:      "Total number of training sessions started",
		},
	)

	// SessionsEndedTotal tracks sessions removed from the store by reason.
	// Expiry inside redis is not observed, only expiry the memory store performs.
	SessionsEndedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "training",
			Name:      "sessions_ended_total",
			Help:      "Total number of training sessions removed by reason",
		},
		[]string{"reason"},
	)

	// StepsLoggedTotal tracks steps appended to a sequence by action type
	StepsLoggedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "training",
			Name:      "steps_logged_total",
			Help:      "Total number of steps logged by action type",
		},
		[]string{"action_type"},
	)

	// WarningsTotal tracks warnings shown to the user by operation
	WarningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "training",
			Name:      "warnings_total",
			Help:      "Total number of warnings raised by operation",
		},
		[]string{"operation"},
	)

	// CapabilitiesTotal tracks answered reviews by outcome
	CapabilitiesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "training",
			Name:      "capabilities_total",
			Help:      "Total number of reviewed capabilities by outcome",
		},
		[]string{"outcome"},
	)

	// OperationDuration tracks how long a session operation takes, lock included
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "training",
			Name:      "operation_duration_seconds",
			Help:      "Duration of session operations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// Capability outcomes
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// Reasons a session ends
const (
	ReasonDeleted = "deleted"
	ReasonExpired = "expired"
)

// RecordSessionCreated records a new training session
func RecordSessionCreated() {
	SessionsCreatedTotal.Inc()
}

// RecordSessionDeleted records an explicitly ended session
func RecordSessionDeleted() {
	SessionsEndedTotal.WithLabelValues(ReasonDeleted).Inc()
}

// RecordSessionsExpired records sessions dropped after their TTL
func RecordSessionsExpired(count int) {
	SessionsEndedTotal.WithLabelValues(ReasonExpired).Add(float64(count))
}

// RecordStepLogged records a step appended to a sequence
func RecordStepLogged(actionType string) {
	StepsLoggedTotal.WithLabelValues(actionType).Inc()
}

// RecordWarning records a warning raised by an operation
func RecordWarning(operation string) {
	WarningsTotal.WithLabelValues(operation).Inc()
}

// RecordCapability records an answered review
func RecordCapability(accepted bool) {
	outcome := OutcomeRejected
	if accepted {
		outcome = OutcomeAccepted
	}
	CapabilitiesTotal.WithLabelValues(outcome).Inc()
}

// RecordOperation records the duration of a session operation
func RecordOperation(operation string, seconds float64) {
	OperationDuration.WithLabelValues(operation).Observe(seconds)
}
