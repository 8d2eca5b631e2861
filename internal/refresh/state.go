package refresh

import (
	"time"

	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
	"github.com/LeonardoBeccarini/lumicert/internal/status"
)

// State is the live data of one session. It is only written by applied fetch results.
type State struct {
	Medicion       *messages.Measurement
	Luz            *messages.AmbientLight
	Notificaciones []messages.Notificacion
	Reportes       []messages.Reporte
	Luminaria      *messages.Measurement

	updated map[Category]time.Time
	errs    map[Category]string
}

func newState() State {
	return State{
		Notificaciones: []messages.Notificacion{},
		Reportes:       []messages.Reporte{},
		updated:        map[Category]time.Time{},
		errs:           map[Category]string{},
	}
}

// Snapshot is a copy of the session state with classifications derived on read.
type Snapshot struct {
	Session                string                  `json:"session"`
	Estado                 string                  `json:"estado"`
	Medicion               *messages.Measurement   `json:"medicion"`
	Clasificacion          status.Classification   `json:"clasificacion"`
	Luz                    *messages.AmbientLight  `json:"luz"`
	Notificaciones         []messages.Notificacion `json:"notificaciones"`
	Reportes               []messages.Reporte      `json:"reportes"`
	Luminaria              *messages.Measurement   `json:"luminaria,omitempty"`
	LuminariaClasificacion *status.Classification  `json:"luminariaClasificacion,omitempty"`
	Actualizado            map[Category]time.Time  `json:"actualizado"`
	Errores                map[Category]string     `json:"errores,omitempty"`
}

func (s State) snapshot(id string, phase Phase, watchesLuminaria bool) Snapshot {
	out := Snapshot{
		Session:        id,
		Estado:         phase.String(),
		Medicion:       copyMeasurement(s.Medicion),
		Clasificacion:  status.ClassifyDevice(s.Medicion),
		Notificaciones: append([]messages.Notificacion{}, s.Notificaciones...),
		Reportes:       append([]messages.Reporte{}, s.Reportes...),
		Actualizado:    make(map[Category]time.Time, len(s.updated)),
	}
	if s.Luz != nil {
		l := *s.Luz
		out.Luz = &l
	}
	if watchesLuminaria {
		out.Luminaria = copyMeasurement(s.Luminaria)
		c := status.ClassifyDevice(s.Luminaria)
		out.LuminariaClasificacion = &c
	}
	for k, v := range s.updated {
		out.Actualizado[k] = v
	}
	if len(s.errs) > 0 {
		out.Errores = make(map[Category]string, len(s.errs))
		for k, v := range s.errs {
			out.Errores[k] = v
		}
	}
	return out
}

func copyMeasurement(m *messages.Measurement) *messages.Measurement {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
