package refresh

import (
	"context"
	"time"

	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
)

// Source is the read side of the telemetry client used by the polling loops.
type Source interface {
	UltimaMedicion(ctx context.Context) (*messages.Measurement, error)
	UltimaMedicionLuminaria(ctx context.Context, idLum string) (*messages.Measurement, error)
	LuzAmbiente(ctx context.Context) (*messages.AmbientLight, error)
	Notificaciones(ctx context.Context) ([]messages.Notificacion, error)
	Reportes(ctx context.Context) ([]messages.Reporte, error)
}

// Cadence is the fixed interval of each category.
type Cadence struct {
	Medicion       time.Duration
	Luz            time.Duration
	Notificaciones time.Duration
	Reportes       time.Duration
	Luminaria      time.Duration
}

func DefaultCadence() Cadence {
	return Cadence{
		Medicion:       5 * time.Second,
		Luz:            5 * time.Second,
		Notificaciones: 15 * time.Second,
		Reportes:       30 * time.Second,
		Luminaria:      5 * time.Second,
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// Tasks builds the polling tasks of a session. luminaria, when not empty, adds a loop
// on that device's latest measurement.
func Tasks(src Source, cad Cadence, luminaria string) []Task {
	def := DefaultCadence()
	tasks := []Task{
		{
			Category: CategoryMedicion,
			Interval: orDefault(cad.Medicion, def.Medicion),
			Fetch: func(ctx context.Context) (Apply, error) {
				m, err := src.UltimaMedicion(ctx)
				if err != nil {
					return nil, err
				}
				return func(s *State) { s.Medicion = m }, nil
			},
		},
		{
			Category: CategoryLuz,
			Interval: orDefault(cad.Luz, def.Luz),
			Fetch: func(ctx context.Context) (Apply, error) {
				l, err := src.LuzAmbiente(ctx)
				if err != nil {
					return nil, err
				}
				return func(s *State) { s.Luz = l }, nil
			},
		},
		{
			Category: CategoryNotificaciones,
			Interval: orDefault(cad.Notificaciones, def.Notificaciones),
			Fetch: func(ctx context.Context) (Apply, error) {
				n, err := src.Notificaciones(ctx)
				if err != nil {
					return nil, err
				}
				return func(s *State) { s.Notificaciones = n }, nil
			},
		},
		{
			Category: CategoryReportes,
			Interval: orDefault(cad.Reportes, def.Reportes),
			Fetch: func(ctx context.Context) (Apply, error) {
				r, err := src.Reportes(ctx)
				if err != nil {
					return nil, err
				}
				return func(s *State) { s.Reportes = r }, nil
			},
		},
	}
	if luminaria != "" {
		tasks = append(tasks, Task{
			Category: CategoryLuminaria,
			Interval: orDefault(cad.Luminaria, def.Luminaria),
			Fetch: func(ctx context.Context) (Apply, error) {
				m, err := src.UltimaMedicionLuminaria(ctx, luminaria)
				if err != nil {
					return nil, err
				}
				return func(s *State) { s.Luminaria = m }, nil
			},
		})
	}
	return tasks
}
