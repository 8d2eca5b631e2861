// Package feed ingests controller frames from MQTT into the reading cache and InfluxDB.
package feed

import (
	"fmt"
	"log"
	"time"

	"github.com/LeonardoBeccarini/lumicert/pkg/dedup"
)

type Config struct {
	// Interval is the publishing cadence of the controllers; it turns power into energy.
	Interval time.Duration
	Location *time.Location
	Logger   *log.Logger
	Now      func() time.Time
}

type Service struct {
	cfg     Config
	dedup   *dedup.Deduper
	cache   *Cache
	writer  *Writer
	metrics *Metrics
}

func NewService(cfg Config, d *dedup.Deduper, cache *Cache, w *Writer, m *Metrics) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{cfg: cfg, dedup: d, cache: cache, writer: w, metrics: m}
}

func (s *Service) Cache() *Cache { return s.cache }

// Handle processes one frame; it is the broker handler of the feed topic.
func (s *Service) Handle(topic string, payload []byte) error {
	if !s.dedup.ShouldProcess(dedup.Key(payload)) {
		s.metrics.Frames.WithLabelValues("duplicate").Inc()
		return nil
	}
	f, err := DecodeFrame(payload)
	if err != nil {
		s.metrics.Frames.WithLabelValues("invalid").Inc()
		return fmt.Errorf("feed: decode frame on %s: %w", topic, err)
	}
	s.metrics.Frames.WithLabelValues("ok").Inc()

	at := FrameTime(f, s.cfg.Location, s.cfg.Now())

	light := ToAmbientLight(f, at)
	s.cache.PutLight(light)
	s.writer.WriteLight(light)

	for _, m := range ToMeasurements(f, at, s.cfg.Interval) {
		s.cache.PutMeasurement(m)
		s.writer.WriteMeasurement(m)
		s.metrics.Measurements.Inc()
		if m.Falla {
			s.metrics.Alarms.WithLabelValues("falla").Inc()
		}
		if m.Sobreconsumo {
			s.metrics.Alarms.WithLabelValues("sobreconsumo").Inc()
		}
		if m.PerdidaEnergia {
			s.metrics.Alarms.WithLabelValues("perdida_energia").Inc()
		}
	}
	if f.Alarms.BH1Fail || f.Alarms.BHDiscrep {
		s.cfg.Logger.Printf("feed: light sensor alarm bh1_fail=%v bh_discrep=%v at %s", f.Alarms.BH1Fail, f.Alarms.BHDiscrep, at.Format(time.RFC3339))
	}
	return nil
}
