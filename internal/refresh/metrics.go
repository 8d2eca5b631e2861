package refresh

import "github.com/prometheus/client_golang/prometheus"

// Metrics of the refresh loops. A nil *Metrics records nothing.
type Metrics struct {
	Ticks    *prometheus.CounterVec
	Failures *prometheus.CounterVec
	Stale    *prometheus.CounterVec
	Applied  *prometheus.CounterVec
	Sessions prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumicert", Subsystem: "refresh", Name: "ticks_total",
			Help: "Fetches launched by the live refresh loops.",
		}, []string{"category"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumicert", Subsystem: "refresh", Name: "failures_total",
			Help: "Fetches that returned an error.",
		}, []string{"category"}),
		Stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumicert", Subsystem: "refresh", Name: "stale_drops_total",
			Help: "Results discarded because the session stopped or a newer fetch was applied.",
		}, []string{"category"}),
		Applied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumicert", Subsystem: "refresh", Name: "applied_total",
			Help: "Results applied to session state.",
		}, []string{"category"}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lumicert", Subsystem: "refresh", Name: "sessions_active",
			Help: "Sessions currently polling.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Ticks, m.Failures, m.Stale, m.Applied, m.Sessions)
	}
	return m
}

func (m *Metrics) tick(c Category) {
	if m != nil {
		m.Ticks.WithLabelValues(string(c)).Inc()
	}
}

func (m *Metrics) failure(c Category) {
	if m != nil {
		m.Failures.WithLabelValues(string(c)).Inc()
	}
}

func (m *Metrics) stale(c Category) {
	if m != nil {
		m.Stale.WithLabelValues(string(c)).Inc()
	}
}

func (m *Metrics) applied(c Category) {
	if m != nil {
		m.Applied.WithLabelValues(string(c)).Inc()
	}
}

func (m *Metrics) sessions(delta float64) {
	if m != nil {
		m.Sessions.Add(delta)
	}
}
