package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result constants for metric labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultPending = "pending"
)

// Actor label values.
const (
	ActorStaff   = "staff"
	ActorPatient = "patient"
)

// Step label values.
const (
	StepPassword = "password"
	StepMFA      = "mfa"
	StepLogout   = "logout"
)

// AuthMetrics counts authentication attempts and gate decisions.
// A nil *AuthMetrics is valid and records nothing.
type AuthMetrics struct {
	attempts  *prometheus.CounterVec
	decisions *prometheus.CounterVec
}

// NewAuthMetrics creates the collectors and registers them on reg.
func NewAuthMetrics(reg prometheus.Registerer) (*AuthMetrics, error) {
	m := &AuthMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sgi",
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Authentication attempts by actor, step and result.",
		}, []string{"actor", "step", "result"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sgi",
			Subsystem: "auth",
			Name:      "gate_decisions_total",
			Help:      "Session gate decisions by gate and outcome.",
		}, []string{"gate", "decision"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.attempts, m.decisions} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Attempt records one authentication step outcome.
func (m *AuthMetrics) Attempt(actor, step, result string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(actor, step, result).Inc()
}

// GateDecision records one session gate outcome.
func (m *AuthMetrics) GateDecision(gate, decision string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(gate, decision).Inc()
}
