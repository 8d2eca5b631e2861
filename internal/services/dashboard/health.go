package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthService is the gRPC health service name of the dashboard.
const HealthService = "lumicert.dashboard"

// Ready is false while any telemetry breaker is open.
func (d *Dashboard) Ready() bool {
	for _, st := range d.client.BreakerStates() {
		if st == gobreaker.StateOpen {
			return false
		}
	}
	return true
}

func (d *Dashboard) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	type status struct {
		Status   string            `json:"status"`
		Breakers map[string]string `json:"breakers"`
		Sesiones int               `json:"sesiones"`
		Editores int               `json:"editores"`
	}
	st := status{
		Status:   "ok",
		Breakers: map[string]string{},
		Sesiones: d.sessions.Len(),
		Editores: d.editors.Len(),
	}
	for name, s := range d.client.BreakerStates() {
		st.Breakers[name] = s.String()
		if s != gobreaker.StateClosed {
			st.Status = "degraded"
		}
	}
	RespondWithJSON(w, http.StatusOK, st)
}

// /readyz: 503 while the backend is considered down.
func (d *Dashboard) HandleReady(w http.ResponseWriter, _ *http.Request) {
	ready := d.Ready()
	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	RespondWithJSON(w, code, struct {
		Ready bool `json:"ready"`
	}{Ready: ready})
}

func servingStatus(ready bool) healthpb.HealthCheckResponse_ServingStatus {
	if ready {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}

// WatchReadiness mirrors ready into the gRPC health server until ctx is done.
func WatchReadiness(ctx context.Context, hs *health.Server, ready func() bool, every time.Duration) {
	set := func() {
		s := servingStatus(ready())
		hs.SetServingStatus("", s)
		hs.SetServingStatus(HealthService, s)
	}
	set()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-t.C:
			set()
		}
	}
}
