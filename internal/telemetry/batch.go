package telemetry

import (
	"context"

	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
	"golang.org/x/sync/errgroup"
)

// LoadBatch runs every load concurrently and waits for all of them.
// The first failure cancels the others and is returned. Loads must only write to
// their own destination; the caller publishes the results when LoadBatch returns nil.
func LoadBatch(ctx context.Context, loads ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, load := range loads {
		load := load
		g.Go(func() error { return load(gctx) })
	}
	return g.Wait()
}

// Resumen is the data behind the fleet overview.
type Resumen struct {
	Estadisticas messages.Estadisticas
	TotalMes     messages.ConsumoTotalMes
	MesAnterior  messages.ConsumoMesAnterior
	PorHora      []messages.ConsumoHora
	Diario       []messages.ConsumoDiario
	PorSector    []messages.ConsumoSector
}

func (c *Client) LoadResumen(ctx context.Context) (Resumen, error) {
	var r Resumen
	err := LoadBatch(ctx,
		func(ctx context.Context) (err error) {
			r.Estadisticas, err = c.Estadisticas(ctx)
			return
		},
		func(ctx context.Context) (err error) {
			r.TotalMes, err = c.ConsumoTotalMes(ctx)
			return
		},
		func(ctx context.Context) (err error) {
			r.MesAnterior, err = c.ConsumoMesAnterior(ctx)
			return
		},
		func(ctx context.Context) (err error) {
			r.PorHora, err = c.ConsumoPorHora(ctx)
			return
		},
		func(ctx context.Context) (err error) {
			r.Diario, err = c.ConsumoDiario(ctx)
			return
		},
		func(ctx context.Context) (err error) {
			r.PorSector, err = c.ConsumoPorSector(ctx)
			return
		},
	)
	if err != nil {
		return Resumen{}, err
	}
	return r, nil
}

// SectorData is everything shown on the sector detail page.
type SectorData struct {
	Detalle    messages.DetalleSector
	Luminarias []messages.LuminariaConMedicion
	Mensual    []messages.ConsumoDiario
}

func (c *Client) LoadSector(ctx context.Context, id string) (SectorData, error) {
	if _, err := sectorPath(id, ""); err != nil {
		return SectorData{}, err
	}
	var d SectorData
	err := LoadBatch(ctx,
		func(ctx context.Context) (err error) {
			d.Detalle, err = c.DetalleSector(ctx, id)
			return
		},
		func(ctx context.Context) (err error) {
			d.Luminarias, err = c.LuminariasPorSector(ctx, id)
			return
		},
		func(ctx context.Context) (err error) {
			d.Mensual, err = c.ConsumoMensualSector(ctx, id)
			return
		},
	)
	if err != nil {
		return SectorData{}, err
	}
	return d, nil
}
