package feed

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Frames       *prometheus.CounterVec
	Measurements prometheus.Counter
	Alarms       *prometheus.CounterVec
	WriteErrors  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumicert", Subsystem: "feed", Name: "frames_total",
			Help: "Controller frames received, by outcome.",
		}, []string{"result"}),
		Measurements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lumicert", Subsystem: "feed", Name: "measurements_total",
			Help: "Luminaria readings written.",
		}),
		Alarms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumicert", Subsystem: "feed", Name: "alarms_total",
			Help: "Fault flags seen in luminaria readings.",
		}, []string{"flag"}),
		WriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lumicert", Subsystem: "feed", Name: "influx_write_errors_total",
			Help: "Asynchronous Influx write failures.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Frames, m.Measurements, m.Alarms, m.WriteErrors)
	}
	return m
}
