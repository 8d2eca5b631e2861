package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Dependency is an upstream the feed needs; Check returns nil while it is usable.
type Dependency struct {
	Name  string
	Check func(ctx context.Context) error
}

// Health answers /healthz and /readyz from the dependency checks and the age of the
// last failed Influx write. Writes that failed within WriteGrace make the feed unready.
type Health struct {
	Deps       []Dependency
	Writer     *Writer
	WriteGrace time.Duration
	Timeout    time.Duration
}

type depStatus struct {
	Up    bool   `json:"up"`
	Error string `json:"error,omitempty"`
}

type healthReport struct {
	Status          string               `json:"status"` // ok | degraded | down
	Ready           bool                 `json:"ready"`
	Deps            map[string]depStatus `json:"deps"`
	LastWriteErrorS float64              `json:"last_write_error_age_sec"`
}

// report runs every check concurrently, each bounded by Timeout.
func (h *Health) report(ctx context.Context) healthReport {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make([]error, len(h.Deps))
	var g errgroup.Group
	for i, d := range h.Deps {
		g.Go(func() error {
			results[i] = d.Check(ctx)
			return nil
		})
	}
	_ = g.Wait()

	age := h.Writer.LastErrorAge()
	rep := healthReport{Deps: make(map[string]depStatus, len(h.Deps)), LastWriteErrorS: age.Seconds()}
	up := 0
	for i, d := range h.Deps {
		st := depStatus{Up: results[i] == nil}
		if results[i] != nil {
			st.Error = results[i].Error()
		} else {
			up++
		}
		rep.Deps[d.Name] = st
	}
	writesOK := age > h.WriteGrace
	rep.Ready = up == len(h.Deps) && writesOK
	switch {
	case rep.Ready:
		rep.Status = "ok"
	case up > 0:
		rep.Status = "degraded"
	default:
		rep.Status = "down"
	}
	return rep
}

// Healthz always answers 200 with the full report.
func (h *Health) Healthz(w http.ResponseWriter, r *http.Request) {
	writeReport(w, http.StatusOK, h.report(r.Context()))
}

// Readyz answers 503 until every dependency is up and writes succeed again.
func (h *Health) Readyz(w http.ResponseWriter, r *http.Request) {
	rep := h.report(r.Context())
	code := http.StatusOK
	if !rep.Ready {
		code = http.StatusServiceUnavailable
	}
	writeReport(w, code, rep)
}

func writeReport(w http.ResponseWriter, code int, rep healthReport) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(rep)
}
