package telemetry

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/LeonardoBeccarini/lumicert/internal/model/entities"
	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
)

func orEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

func list[T any](ctx context.Context, c *Client, breaker, op, path string) ([]T, error) {
	out, err := call[[]T](ctx, c, breaker, op, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}

func sectorPath(id string, suffix string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", &ValidationError{Field: "id_sector", Message: "identificador de sector requerido"}
	}
	return "/api/sectores/" + url.PathEscape(id) + suffix, nil
}

// ---- sectores ----

func (c *Client) Sectores(ctx context.Context) ([]entities.Sector, error) {
	return list[entities.Sector](ctx, c, BreakerSectores, "sectores", "/api/sectores")
}

// EstadoSectores returns every sector with the fault flags of its latest reading.
func (c *Client) EstadoSectores(ctx context.Context) ([]messages.SectorConMedicion, error) {
	return list[messages.SectorConMedicion](ctx, c, BreakerSectores, "sectores estado", "/api/sectores/estado")
}

func (c *Client) DetalleSector(ctx context.Context, id string) (messages.DetalleSector, error) {
	p, err := sectorPath(id, "")
	if err != nil {
		return messages.DetalleSector{}, err
	}
	return call[messages.DetalleSector](ctx, c, BreakerSectores, "detalle sector", http.MethodGet, p, nil)
}

func (c *Client) LuminariasPorSector(ctx context.Context, id string) ([]messages.LuminariaConMedicion, error) {
	p, err := sectorPath(id, "/luminarias")
	if err != nil {
		return nil, err
	}
	return list[messages.LuminariaConMedicion](ctx, c, BreakerLuminarias, "luminarias por sector", p)
}

func (c *Client) ConsumoMensualSector(ctx context.Context, id string) ([]messages.ConsumoDiario, error) {
	p, err := sectorPath(id, "/consumo-mensual")
	if err != nil {
		return nil, err
	}
	return list[messages.ConsumoDiario](ctx, c, BreakerConsumo, "consumo mensual sector", p)
}

func validateSectorInput(in messages.SectorInput) (messages.SectorInput, error) {
	in.Nombre = strings.TrimSpace(in.Nombre)
	in.Zona = strings.TrimSpace(in.Zona)
	if in.Nombre == "" {
		return in, &ValidationError{Field: "nombre", Message: "el nombre es obligatorio"}
	}
	if in.Zona == "" {
		return in, &ValidationError{Field: "zona", Message: "la zona es obligatoria"}
	}
	return in, nil
}

func (c *Client) CrearSector(ctx context.Context, in messages.SectorInput) (entities.Sector, error) {
	in, err := validateSectorInput(in)
	if err != nil {
		return entities.Sector{}, err
	}
	return call[entities.Sector](ctx, c, BreakerSectores, "crear sector", http.MethodPost, "/api/sectores", in)
}

func (c *Client) ActualizarSector(ctx context.Context, id string, in messages.SectorInput) (entities.Sector, error) {
	p, err := sectorPath(id, "")
	if err != nil {
		return entities.Sector{}, err
	}
	if in, err = validateSectorInput(in); err != nil {
		return entities.Sector{}, err
	}
	return call[entities.Sector](ctx, c, BreakerSectores, "actualizar sector", http.MethodPut, p, in)
}

func (c *Client) EliminarSector(ctx context.Context, id string) error {
	p, err := sectorPath(id, "")
	if err != nil {
		return err
	}
	_, err = call[entities.Sector](ctx, c, BreakerSectores, "eliminar sector", http.MethodDelete, p, nil)
	return err
}

// EnlazarLuminarias replaces the membership of a sector with ids. An empty list unlinks
// every luminaria of the sector.
func (c *Client) EnlazarLuminarias(ctx context.Context, id string, ids []string) error {
	p, err := sectorPath(id, "/luminarias")
	if err != nil {
		return err
	}
	body := messages.LinkLuminarias{Luminarias: make([]string, 0, len(ids))}
	for _, x := range ids {
		if x = strings.TrimSpace(x); x != "" {
			body.Luminarias = append(body.Luminarias, x)
		}
	}
	_, err = call[entities.Sector](ctx, c, BreakerSectores, "enlazar luminarias", http.MethodPut, p, body)
	return err
}

// ---- luminarias & mediciones ----

func (c *Client) Luminarias(ctx context.Context) ([]entities.Luminaria, error) {
	return list[entities.Luminaria](ctx, c, BreakerLuminarias, "luminarias", "/api/luminarias")
}

// UltimaMedicion returns the latest fleet reading, nil when the backend has none.
func (c *Client) UltimaMedicion(ctx context.Context) (*messages.Measurement, error) {
	return call[*messages.Measurement](ctx, c, BreakerMediciones, "ultima medicion", http.MethodGet, "/api/ultima-medicion", nil)
}

func (c *Client) UltimaMedicionLuminaria(ctx context.Context, idLum string) (*messages.Measurement, error) {
	idLum = strings.TrimSpace(idLum)
	if idLum == "" {
		return nil, &ValidationError{Field: "id_lum", Message: "identificador de luminaria requerido"}
	}
	p := "/api/luminarias/" + url.PathEscape(idLum) + "/ultima-medicion"
	return call[*messages.Measurement](ctx, c, BreakerMediciones, "ultima medicion luminaria", http.MethodGet, p, nil)
}

// LuzAmbiente returns the latest ambient light reading, nil when none is known yet.
func (c *Client) LuzAmbiente(ctx context.Context) (*messages.AmbientLight, error) {
	return call[*messages.AmbientLight](ctx, c, BreakerLuz, "luz ambiente", http.MethodGet, c.lightURL+"/api/luz/ultima", nil)
}

// ---- eventos ----

func (c *Client) Notificaciones(ctx context.Context) ([]messages.Notificacion, error) {
	return list[messages.Notificacion](ctx, c, BreakerNotificaciones, "notificaciones", "/api/notificaciones")
}

func (c *Client) Reportes(ctx context.Context) ([]messages.Reporte, error) {
	return list[messages.Reporte](ctx, c, BreakerReportes, "reportes", "/api/reportes")
}

func (c *Client) CrearReporte(ctx context.Context, in messages.NuevoReporte) (messages.Reporte, error) {
	in.Descripcion = strings.TrimSpace(in.Descripcion)
	in.IDLuminaria = strings.TrimSpace(in.IDLuminaria)
	if in.Descripcion == "" {
		return messages.Reporte{}, &ValidationError{Field: "descripcion", Message: "la descripción es obligatoria"}
	}
	return call[messages.Reporte](ctx, c, BreakerReportes, "crear reporte", http.MethodPost, "/api/reportes", in)
}

// ---- consumo ----

func (c *Client) ConsumoTotalMes(ctx context.Context) (messages.ConsumoTotalMes, error) {
	return call[messages.ConsumoTotalMes](ctx, c, BreakerConsumo, "consumo total mes", http.MethodGet, "/api/consumo/total-mes", nil)
}

func (c *Client) ConsumoMesAnterior(ctx context.Context) (messages.ConsumoMesAnterior, error) {
	return call[messages.ConsumoMesAnterior](ctx, c, BreakerConsumo, "consumo mes anterior", http.MethodGet, "/api/consumo/mes-anterior", nil)
}

func (c *Client) ConsumoDiario(ctx context.Context) ([]messages.ConsumoDiario, error) {
	return list[messages.ConsumoDiario](ctx, c, BreakerConsumo, "consumo diario", "/api/consumo/diario")
}

func (c *Client) ConsumoPorSector(ctx context.Context) ([]messages.ConsumoSector, error) {
	return list[messages.ConsumoSector](ctx, c, BreakerConsumo, "consumo por sector", "/api/consumo/por-sector")
}

func (c *Client) ConsumoPorHora(ctx context.Context) ([]messages.ConsumoHora, error) {
	return list[messages.ConsumoHora](ctx, c, BreakerConsumo, "consumo por hora", "/api/consumo/por-hora")
}

func (c *Client) Estadisticas(ctx context.Context) (messages.Estadisticas, error) {
	return call[messages.Estadisticas](ctx, c, BreakerConsumo, "estadisticas", http.MethodGet, "/api/estadisticas", nil)
}
