package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
)

type Metrics struct {
	Breaker     *prometheus.GaugeVec
	Transitions *prometheus.CounterVec
	Errors      *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Breaker: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "lumicert",
			Subsystem: "dashboard",
			Name:      "breaker_state",
			Help:      "Circuit breaker state per telemetry category (0 closed, 1 half-open, 2 open).",
		}, []string{"category"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumicert",
			Subsystem: "dashboard",
			Name:      "breaker_transitions_total",
			Help:      "Circuit breaker state changes.",
		}, []string{"category", "to"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumicert",
			Subsystem: "dashboard",
			Name:      "errors_total",
			Help:      "Error responses by code.",
		}, []string{"code"}),
	}
	reg.MustRegister(m.Breaker, m.Transitions, m.Errors)
	return m
}

// BreakerChanged is meant for telemetry.Config.OnBreakerChange.
func (m *Metrics) BreakerChanged(name string, _, to gobreaker.State) {
	if m == nil {
		return
	}
	m.Breaker.WithLabelValues(name).Set(float64(to))
	m.Transitions.WithLabelValues(name, to.String()).Inc()
}

func (m *Metrics) failed(code ErrorCode) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(string(code)).Inc()
}
