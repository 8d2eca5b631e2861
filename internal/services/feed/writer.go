package feed

import (
	"log"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
)

const (
	MeasurementMedicion = "medicion"
	MeasurementLuz      = "luz"
)

// PointWriter is the subset of the Influx async write API the feed uses.
type PointWriter interface {
	WritePoint(p *write.Point)
	Errors() <-chan error
	Flush()
}

// Writer turns readings into Influx points and tracks the last async write error
// for /healthz and /readyz.
type Writer struct {
	api     PointWriter
	logger  *log.Logger
	mu      sync.RWMutex
	lastErr time.Time
	onError func(error)
}

func NewWriter(w PointWriter, logger *log.Logger, onError func(error)) *Writer {
	if logger == nil {
		logger = log.Default()
	}
	ww := &Writer{
		api:     w,
		logger:  logger,
		lastErr: time.Now().Add(-24 * time.Hour),
		onError: onError,
	}
	go func() {
		for err := range w.Errors() {
			if err == nil {
				continue
			}
			ww.mu.Lock()
			ww.lastErr = time.Now()
			ww.mu.Unlock()
			ww.logger.Printf("feed: influx write error: %v", err)
			if ww.onError != nil {
				ww.onError(err)
			}
		}
	}()
	return ww
}

// LastErrorAge is the time since the last failed write.
func (w *Writer) LastErrorAge() time.Duration {
	if w == nil {
		return 99999 * time.Hour
	}
	w.mu.RLock()
	t := w.lastErr
	w.mu.RUnlock()
	return time.Since(t)
}

func (w *Writer) WriteMeasurement(m messages.Measurement) {
	w.api.WritePoint(MeasurementPoint(m))
}

func (w *Writer) WriteLight(l messages.AmbientLight) {
	w.api.WritePoint(LightPoint(l))
}

func (w *Writer) Flush() { w.api.Flush() }

// MeasurementPoint maps a reading to the "medicion" series, tagged by id_lum.
func MeasurementPoint(m messages.Measurement) *write.Point {
	return influxdb2.NewPoint(MeasurementMedicion,
		map[string]string{"id_lum": m.IDLum},
		map[string]interface{}{
			"consumo":         m.Consumo,
			"corriente":       m.Corriente,
			"voltaje":         m.Voltaje,
			"estado_rele":     m.EstadoRele,
			"falla":           m.Falla,
			"sobreconsumo":    m.Sobreconsumo,
			"perdida_energia": m.PerdidaEnergia,
		},
		m.Fecha)
}

func LightPoint(l messages.AmbientLight) *write.Point {
	tags := map[string]string{}
	if l.Modo != "" {
		tags["modo"] = l.Modo
	}
	return influxdb2.NewPoint(MeasurementLuz, tags,
		map[string]interface{}{
			"lux":          l.Lux,
			"falla_sensor": l.FallaSensor,
			"discrepancia": l.Discrepancia,
		},
		l.Fecha)
}
