package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/LeonardoBeccarini/lumicert/internal/consumption"
	"github.com/LeonardoBeccarini/lumicert/internal/model"
	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
	"github.com/LeonardoBeccarini/lumicert/internal/status"
	"github.com/LeonardoBeccarini/lumicert/internal/telemetry"
)

// HandleData serves the snapshot of the always-on live session.
func (d *Dashboard) HandleData(w http.ResponseWriter, r *http.Request) {
	s, err := d.sessions.Get(d.live)
	if err != nil {
		d.fail(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, s.Snapshot())
}

type resumenResponse struct {
	Estadisticas  messages.Estadisticas       `json:"estadisticas"`
	Comparacion   consumption.MonthComparison `json:"comparacion"`
	PorHora       []messages.ConsumoHora      `json:"porHora"`
	FuentePorHora string                      `json:"fuentePorHora"`
	Diario        []consumption.DailyPoint    `json:"diario"`
	PorSector     []messages.ConsumoSector    `json:"porSector"`
}

// HandleResumen joins the fleet overview. With ?fuente=influx the hourly profile is
// computed from the stored telemetry instead of the backend.
func (d *Dashboard) HandleResumen(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := d.requestContext(r)
	defer cancel()

	fuente := r.URL.Query().Get("fuente")
	switch fuente {
	case "", "backend":
		fuente = "backend"
	case "influx":
		if d.hourly == nil {
			d.fail(w, r, &telemetry.ValidationError{Field: "fuente", Message: "influx no configurado"})
			return
		}
	default:
		d.fail(w, r, &telemetry.ValidationError{Field: "fuente", Message: "valores admitidos: backend, influx"})
		return
	}

	var (
		res    telemetry.Resumen
		hourly []messages.ConsumoHora
	)
	loads := []func(context.Context) error{
		func(ctx context.Context) (err error) {
			res, err = d.client.LoadResumen(ctx)
			return
		},
	}
	if fuente == "influx" {
		loads = append(loads, func(ctx context.Context) error {
			h, err := d.hourly.ConsumoPorHora(ctx)
			if err != nil {
				return &telemetry.TransportError{Op: "influx por-hora", Err: err}
			}
			hourly = h
			return nil
		})
	}
	if err := telemetry.LoadBatch(ctx, loads...); err != nil {
		d.fail(w, r, err)
		return
	}
	if fuente == "backend" {
		hourly = res.PorHora
	}

	year, month := res.TotalMes.Anio, time.Month(res.TotalMes.Mes)
	if year == 0 || month < time.January || month > time.December {
		now := d.cfg.Now().In(d.cfg.Location)
		year, month = now.Year(), now.Month()
	}

	RespondWithJSON(w, http.StatusOK, resumenResponse{
		Estadisticas:  res.Estadisticas,
		Comparacion:   consumption.CompareMonths(res.TotalMes, res.MesAnterior),
		PorHora:       consumption.HourlySeries(hourly),
		FuentePorHora: fuente,
		Diario:        consumption.DailySeries(res.Diario, consumption.DaysIn(year, month)),
		PorSector:     orEmpty(res.PorSector),
	})
}

type sectorItem struct {
	model.Sector
	Estado         model.SectorState     `json:"estado"`
	UltimaMedicion *messages.SectorFlags `json:"ultimaMedicion"`
}

type sectoresResponse struct {
	Sectores     []sectorItem          `json:"sectores"`
	Estadisticas messages.Estadisticas `json:"estadisticas"`
}

// HandleSectores lists the sectors coloured by their latest aggregated flags.
func (d *Dashboard) HandleSectores(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := d.requestContext(r)
	defer cancel()

	var (
		estado []messages.SectorConMedicion
		stats  messages.Estadisticas
	)
	err := telemetry.LoadBatch(ctx,
		func(ctx context.Context) (err error) {
			estado, err = d.client.EstadoSectores(ctx)
			return
		},
		func(ctx context.Context) (err error) {
			stats, err = d.client.Estadisticas(ctx)
			return
		},
	)
	if err != nil {
		d.fail(w, r, err)
		return
	}

	out := sectoresResponse{Sectores: make([]sectorItem, 0, len(estado)), Estadisticas: stats}
	for _, s := range estado {
		st := model.SectorOK
		if s.UltimaMedicion != nil {
			st = status.StateFromFlags(*s.UltimaMedicion)
		}
		out.Sectores = append(out.Sectores, sectorItem{Sector: s.Sector, Estado: st, UltimaMedicion: s.UltimaMedicion})
	}
	RespondWithJSON(w, http.StatusOK, out)
}

type miembro struct {
	messages.LuminariaConMedicion
	Etiquetas []model.Tag `json:"etiquetas"`
}

type sectorResponse struct {
	Detalle    messages.DetalleSector   `json:"detalle"`
	Luminarias []miembro                `json:"luminarias"`
	Resumen    status.SectorSummary     `json:"resumen"`
	Mensual    []consumption.DailyPoint `json:"mensual"`
}

// HandleSector joins the detail page of one sector; nothing is returned unless every
// fetch succeeds.
func (d *Dashboard) HandleSector(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := d.requestContext(r)
	defer cancel()

	id := mux.Vars(r)["id"]
	data, err := d.client.LoadSector(ctx, id)
	if err != nil {
		d.fail(w, r, err)
		return
	}

	members := make([]miembro, 0, len(data.Luminarias))
	for _, l := range data.Luminarias {
		c := status.ClassifyDevice(l.UltimaMedicion)
		l.Estado = c.State
		members = append(members, miembro{LuminariaConMedicion: l, Etiquetas: orEmpty(c.Tags)})
	}
	now := d.cfg.Now().In(d.cfg.Location)

	RespondWithJSON(w, http.StatusOK, sectorResponse{
		Detalle:    data.Detalle,
		Luminarias: members,
		Resumen:    status.AggregateMembers(id, data.Luminarias),
		Mensual:    consumption.DailySeries(data.Mensual, consumption.DaysIn(now.Year(), now.Month())),
	})
}

func orEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
