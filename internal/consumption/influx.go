package consumption

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
)

// InfluxHourly reads the hourly consumption profile from the telemetry feed bucket.
type InfluxHourly struct {
	query       api.QueryAPI
	bucket      string
	measurement string
	window      time.Duration
	loc         *time.Location
}

// NewInfluxHourly builds a profile reader over the last window of data.
func NewInfluxHourly(q api.QueryAPI, bucket, measurement string, window time.Duration, loc *time.Location) *InfluxHourly {
	if window <= 0 {
		window = 24 * time.Hour
	}
	if loc == nil {
		loc = time.Local
	}
	if strings.TrimSpace(measurement) == "" {
		measurement = "medicion"
	}
	return &InfluxHourly{query: q, bucket: bucket, measurement: measurement, window: window, loc: loc}
}

// Each point carries the kWh of one frame, so an hourly sum per id_lum is the energy
// that luminaria used in that hour.
func buildHourlyFlux(bucket, measurement string, window time.Duration) string {
	return fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == %q and r._field == "consumo")
  |> group(columns: ["id_lum"])
  |> aggregateWindow(every: 1h, fn: sum, createEmpty: false)
  |> keep(columns: ["_time","_value","id_lum"])
`, bucket, int(window.Minutes()), measurement)
}

// ConsumoPorHora returns the kWh of each luminaria per hour; HourlySeries averages
// them across luminarias.
func (h *InfluxHourly) ConsumoPorHora(ctx context.Context) ([]messages.ConsumoHora, error) {
	res, err := h.query.Query(ctx, buildHourlyFlux(h.bucket, h.measurement, h.window))
	if err != nil {
		return nil, fmt.Errorf("influx hourly query: %w", err)
	}
	defer res.Close()

	out := make([]messages.ConsumoHora, 0, HoursPerDay)
	for res.Next() {
		rec := res.Record()
		v, ok := toFloat(rec.Value())
		if !ok {
			continue
		}
		// aggregateWindow stamps the end of the window: 10:00 holds 09:00-10:00
		hora := rec.Time().Add(-time.Hour).In(h.loc).Hour()
		out = append(out, messages.ConsumoHora{Hora: hora, ConsumoPromedio: v})
	}
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("influx hourly iter: %w", err)
	}
	return out, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}
