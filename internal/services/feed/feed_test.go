package feed

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
	"github.com/LeonardoBeccarini/lumicert/pkg/dedup"
)

type fakePoints struct {
	mu     sync.Mutex
	points []*write.Point
	errs   chan error
}

func newFakePoints() *fakePoints { return &fakePoints{errs: make(chan error)} }

func (f *fakePoints) WritePoint(p *write.Point) {
	f.mu.Lock()
	f.points = append(f.points, p)
	f.mu.Unlock()
}
func (f *fakePoints) Errors() <-chan error { return f.errs }
func (f *fakePoints) Flush()               {}

func (f *fakePoints) byName(name string) []*write.Point {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*write.Point
	for _, p := range f.points {
		if p.Name() == name {
			out = append(out, p)
		}
	}
	return out
}

const sampleFrame = `{
  "ts": 1762250400,
  "ts_iso": "2025-11-04T10:00:00",
  "modo": "auto",
  "lux": 35.5,
  "alarms": {"bh1_fail": false, "bh_discrep": true},
  "bank": {"C1": false, "C2": false, "C3": false},
  "luminarias": [
    {"id": 4, "name": "Luminaria 4", "relay": true, "ok": true, "V": 12.0, "mA": 80.0, "W": 0.96, "fail_low_current": false, "theft": false, "overcurrent": false},
    {"id": 5, "name": "Luminaria 5", "relay": true, "ok": true, "V": 12.1, "mA": 2.5, "W": 0.03, "fail_low_current": true, "theft": false, "overcurrent": false},
    {"id": 6, "name": "Luminaria 6", "relay": false, "ok": true, "V": 0, "mA": 20.0, "W": 0, "fail_low_current": false, "theft": true, "overcurrent": false}
  ]
}`

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestToMeasurements(t *testing.T) {
	f, err := DecodeFrame([]byte(sampleFrame))
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	at := FrameTime(f, time.UTC, time.Time{})
	if !at.Equal(time.Unix(1762250400, 0)) {
		t.Fatalf("frame time = %s", at)
	}
	ms := ToMeasurements(f, at, 5*time.Second)
	if len(ms) != 3 {
		t.Fatalf("want 3 measurements, got %d", len(ms))
	}

	m := ms[0]
	if m.IDLum != "4" || !approx(m.Corriente, 0.08) || !approx(m.Consumo, 0.96*5/3600/1000) || !m.EstadoRele {
		t.Fatalf("unexpected conversion %+v", m)
	}
	if !ms[1].Falla || ms[1].Sobreconsumo {
		t.Fatalf("fail_low_current must map to falla: %+v", ms[1])
	}
	if !ms[2].PerdidaEnergia || ms[2].EstadoRele || ms[2].Falla {
		t.Fatalf("theft must map to perdida_energia: %+v", ms[2])
	}
}

func TestFrameTimeFallbacks(t *testing.T) {
	loc := time.FixedZone("COT", -5*3600)
	fallback := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	got := FrameTime(messages.TelemetryFrame{TSISO: "2025-11-04T10:00:00"}, loc, fallback)
	if want := time.Date(2025, 11, 4, 15, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("ts_iso in location: got %s want %s", got, want)
	}
	if got := FrameTime(messages.TelemetryFrame{TSISO: "ayer"}, loc, fallback); !got.Equal(fallback) {
		t.Fatalf("unparseable ts_iso must use fallback, got %s", got)
	}
}

func TestDecodeFrameRejectsEmpty(t *testing.T) {
	if _, err := DecodeFrame([]byte(`{}`)); err == nil {
		t.Fatal("want error for empty frame")
	}
	if _, err := DecodeFrame([]byte(`not json`)); err == nil {
		t.Fatal("want error for invalid json")
	}
}

func newTestService(t *testing.T) (*Service, *fakePoints) {
	t.Helper()
	pts := newFakePoints()
	logger := log.New(io.Discard, "", 0)
	w := NewWriter(pts, logger, nil)
	svc := NewService(Config{Interval: 5 * time.Second, Location: time.UTC, Logger: logger},
		dedup.New(time.Minute, 100), NewCache(), w, NewMetrics(prometheus.NewRegistry()))
	return svc, pts
}

func TestHandleFillsCacheAndInflux(t *testing.T) {
	svc, pts := newTestService(t)

	if err := svc.Handle("lumicert/luminarias", []byte(sampleFrame)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if err := svc.Handle("lumicert/luminarias", []byte(sampleFrame)); err != nil {
		t.Fatalf("Handle duplicate: %v", err)
	}

	if n := len(pts.byName(MeasurementMedicion)); n != 3 {
		t.Fatalf("want 3 medicion points (duplicate dropped), got %d", n)
	}
	if n := len(pts.byName(MeasurementLuz)); n != 1 {
		t.Fatalf("want 1 luz point, got %d", n)
	}
	l, ok := svc.Cache().Light()
	if !ok || l.Lux != 35.5 || l.Modo != "AUTO" || !l.Discrepancia {
		t.Fatalf("unexpected light %+v", l)
	}
	if m, ok := svc.Cache().Latest("5"); !ok || !m.Falla {
		t.Fatalf("unexpected latest for 5: %+v", m)
	}
	if err := svc.Handle("lumicert/luminarias", []byte(`garbage`)); err == nil {
		t.Fatal("want decode error")
	}
}

func TestCacheKeepsNewest(t *testing.T) {
	c := NewCache()
	t0 := time.Date(2025, 11, 4, 10, 0, 0, 0, time.UTC)
	c.PutMeasurement(messages.Measurement{IDLum: "1", Fecha: t0.Add(time.Minute), Consumo: 2})
	c.PutMeasurement(messages.Measurement{IDLum: "1", Fecha: t0, Consumo: 1})
	if m, _ := c.Latest("1"); m.Consumo != 2 {
		t.Fatalf("older reading replaced newer one: %+v", m)
	}
	c.PutLight(messages.AmbientLight{Lux: 10, Fecha: t0.Add(time.Minute)})
	c.PutLight(messages.AmbientLight{Lux: 99, Fecha: t0})
	if l, _ := c.Light(); l.Lux != 10 {
		t.Fatalf("older light replaced newer one: %+v", l)
	}
}

func TestRoutesEnvelope(t *testing.T) {
	svc, _ := newTestService(t)
	r := mux.NewRouter()
	Routes(r, svc.Cache())

	get := func(path string) map[string]json.RawMessage {
		t.Helper()
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
		var body map[string]json.RawMessage
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		return body
	}

	if body := get("/api/luz/ultima"); string(body["data"]) != "null" || string(body["success"]) != "true" {
		t.Fatalf("empty cache must answer data=null: %s", body["data"])
	}

	_ = svc.Handle("t", []byte(sampleFrame))

	var m messages.Measurement
	if err := json.Unmarshal(get("/api/luminarias/4/ultima-medicion")["data"], &m); err != nil {
		t.Fatalf("decode measurement: %v", err)
	}
	if m.IDLum != "4" || !m.EstadoRele {
		t.Fatalf("unexpected measurement %+v", m)
	}
	var all []messages.Measurement
	_ = json.Unmarshal(get("/api/mediciones/ultimas")["data"], &all)
	if len(all) != 3 || all[0].IDLum != "4" {
		t.Fatalf("unexpected list %+v", all)
	}
}

func TestHealthReport(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }
	slow := func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() }

	tests := []struct {
		name       string
		mqtt       func(context.Context) error
		influx     func(context.Context) error
		wantCode   int
		wantStatus string
	}{
		{name: "all up", mqtt: up, influx: up, wantCode: http.StatusOK, wantStatus: "ok"},
		{name: "mqtt down", mqtt: down, influx: up, wantCode: http.StatusServiceUnavailable, wantStatus: "degraded"},
		{name: "influx hangs", mqtt: up, influx: slow, wantCode: http.StatusServiceUnavailable, wantStatus: "degraded"},
		{name: "all down", mqtt: down, influx: down, wantCode: http.StatusServiceUnavailable, wantStatus: "down"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := &Health{
				Deps:       []Dependency{{Name: "mqtt", Check: tc.mqtt}, {Name: "influx", Check: tc.influx}},
				Writer:     NewWriter(newFakePoints(), log.New(io.Discard, "", 0), nil),
				WriteGrace: time.Second,
				Timeout:    50 * time.Millisecond,
			}

			rec := httptest.NewRecorder()
			h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if rec.Code != tc.wantCode {
				t.Fatalf("readyz status %d, want %d", rec.Code, tc.wantCode)
			}

			rec = httptest.NewRecorder()
			h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			var rep healthReport
			if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if rec.Code != http.StatusOK || rep.Status != tc.wantStatus || len(rep.Deps) != 2 {
				t.Fatalf("healthz %d %+v, want status %s", rec.Code, rep, tc.wantStatus)
			}
			if m := rep.Deps["mqtt"]; m.Up == (m.Error != "") {
				t.Fatalf("mqtt dep = %+v", m)
			}
		})
	}
}

func TestRecentWriteErrorMakesNotReady(t *testing.T) {
	pts := newFakePoints()
	recorded := make(chan struct{}, 1)
	w := NewWriter(pts, log.New(io.Discard, "", 0), func(error) { recorded <- struct{}{} })
	up := func(context.Context) error { return nil }
	h := &Health{Deps: []Dependency{{Name: "mqtt", Check: up}}, Writer: w, WriteGrace: time.Minute}

	pts.errs <- errors.New("bucket not found")
	select {
	case <-recorded:
	case <-time.After(2 * time.Second):
		t.Fatal("write error never recorded")
	}

	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	var rep healthReport
	_ = json.Unmarshal(rec.Body.Bytes(), &rep)
	if rec.Code != http.StatusServiceUnavailable || rep.Ready || rep.Status != "degraded" {
		t.Fatalf("status %d report %+v", rec.Code, rep)
	}
}
