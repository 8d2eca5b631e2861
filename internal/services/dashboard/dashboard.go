package dashboard

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/LeonardoBeccarini/lumicert/internal/assignment"
	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
	"github.com/LeonardoBeccarini/lumicert/internal/refresh"
	"github.com/LeonardoBeccarini/lumicert/internal/telemetry"
)

type Config struct {
	// Budget of the backend calls made for one request.
	Timeout  time.Duration
	Location *time.Location
	Logger   *log.Logger
	Now      func() time.Time
}

// HourlySource is an alternative origin for the hourly consumption profile.
type HourlySource interface {
	ConsumoPorHora(ctx context.Context) ([]messages.ConsumoHora, error)
}

// Dashboard is the backend-for-frontend of the monitoring UI.
type Dashboard struct {
	cfg      Config
	client   *telemetry.Client
	editors  *assignment.Registry
	sessions *refresh.Manager
	hourly   HourlySource
	metrics  *Metrics

	// always-on session behind /dashboard/data, never pruned
	live string
}

// New opens the default live session and keeps it out of idle pruning.
// hourly and metrics may be nil.
func New(cfg Config, client *telemetry.Client, editors *assignment.Registry, sessions *refresh.Manager, hourly HourlySource, metrics *Metrics) (*Dashboard, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
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
	live, err := sessions.Open("")
	if err != nil {
		return nil, err
	}
	if err := sessions.Keep(live.ID()); err != nil {
		return nil, err
	}
	return &Dashboard{
		cfg:      cfg,
		client:   client,
		editors:  editors,
		sessions: sessions,
		hourly:   hourly,
		metrics:  metrics,
		live:     live.ID(),
	}, nil
}

// LiveSession is the id of the session behind /dashboard/data.
func (d *Dashboard) LiveSession() string { return d.live }

// Close stops every live session.
func (d *Dashboard) Close() { d.sessions.CloseAll() }

func (d *Dashboard) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d.cfg.Timeout)
}
