package consumption

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
)

func TestVariation(t *testing.T) {
	tests := []struct {
		cur, prev, want float64
	}{
		{100, 0, 0},
		{0, 0, 0},
		{150, 100, 50},
		{50, 100, -50},
		{100, 100, 0},
		{0, 80, -100},
	}
	for _, tc := range tests {
		if got := Variation(tc.cur, tc.prev); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Variation(%v,%v)=%v want %v", tc.cur, tc.prev, got, tc.want)
		}
	}
}

func TestHourlySeriesGapFill(t *testing.T) {
	got := HourlySeries([]messages.ConsumoHora{{Hora: 3, ConsumoPromedio: 5}})
	if len(got) != HoursPerDay {
		t.Fatalf("len=%d want %d", len(got), HoursPerDay)
	}
	for i, h := range got {
		if h.Hora != i {
			t.Fatalf("slot %d has hora %d", i, h.Hora)
		}
		want := 0.0
		if i == 3 {
			want = 5
		}
		if h.ConsumoPromedio != want {
			t.Fatalf("slot %d = %v want %v", i, h.ConsumoPromedio, want)
		}
	}
}

func TestHourlySeriesIgnoresOrderAndOutOfRange(t *testing.T) {
	a := HourlySeries([]messages.ConsumoHora{
		{Hora: 23, ConsumoPromedio: 1},
		{Hora: 0, ConsumoPromedio: 2},
		{Hora: 24, ConsumoPromedio: 99},
		{Hora: -1, ConsumoPromedio: 99},
		{Hora: 12, ConsumoPromedio: 4},
		{Hora: 12, ConsumoPromedio: 2},
	})
	b := HourlySeries([]messages.ConsumoHora{
		{Hora: 12, ConsumoPromedio: 2},
		{Hora: 0, ConsumoPromedio: 2},
		{Hora: 12, ConsumoPromedio: 4},
		{Hora: 23, ConsumoPromedio: 1},
	})
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("slot %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
	if a[12].ConsumoPromedio != 3 {
		t.Fatalf("repeated hour should be averaged, got %v", a[12].ConsumoPromedio)
	}
}

func TestHourlySeriesEmptyInput(t *testing.T) {
	got := HourlySeries(nil)
	if len(got) != HoursPerDay {
		t.Fatalf("len=%d", len(got))
	}
	for _, h := range got {
		if h.ConsumoPromedio != 0 {
			t.Fatalf("expected zero series, got %+v", h)
		}
	}
}

func TestDailySeries(t *testing.T) {
	got := DailySeries([]messages.ConsumoDiario{
		{Dia: 2, Consumo: 1.5},
		{Dia: 2, Consumo: 0.5},
		{Dia: 30, Consumo: 3},
		{Dia: 31, Consumo: 7},
	}, 30)
	if len(got) != 30 {
		t.Fatalf("len=%d", len(got))
	}
	if got[0] != (DailyPoint{Dia: 1}) || got[1] != (DailyPoint{Dia: 2, Consumo: 2}) || got[29] != (DailyPoint{Dia: 30, Consumo: 3}) {
		t.Fatalf("unexpected series: %+v", got)
	}
}

func TestDailySeriesInfersLength(t *testing.T) {
	if got := DailySeries([]messages.ConsumoDiario{{Dia: 4, Consumo: 1}}, 0); len(got) != 4 {
		t.Fatalf("len=%d want 4", len(got))
	}
	if got := DailySeries(nil, 0); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil series, got %#v", got)
	}
}

func TestDaysIn(t *testing.T) {
	if DaysIn(2024, time.February) != 29 || DaysIn(2025, time.February) != 28 || DaysIn(2025, time.November) != 30 {
		t.Fatal("DaysIn miscounted")
	}
}

func TestCompareMonths(t *testing.T) {
	got := CompareMonths(
		messages.ConsumoTotalMes{ConsumoTotalMes: 150, ConsumoPromedioDiario: 5, Mes: 11, Anio: 2025},
		messages.ConsumoMesAnterior{ConsumoMesAnterior: 100, Mes: 10, Anio: 2025},
	)
	if got.Variacion != 50 || got.ConsumoMesAnterior != 100 || got.Mes != 11 {
		t.Fatalf("got %+v", got)
	}
}

func TestBuildHourlyFlux(t *testing.T) {
	q := buildHourlyFlux("telemetria", "luminaria", 24*time.Hour)
	for _, want := range []string{`from(bucket: "telemetria")`, "range(start: -1440m)", `r._measurement == "luminaria"`, `group(columns: ["id_lum"])`, "aggregateWindow(every: 1h, fn: sum"} {
		if !strings.Contains(q, want) {
			t.Fatalf("flux missing %q:\n%s", want, q)
		}
	}
	if strings.Contains(q, "fn: mean") {
		t.Fatalf("per-frame energy must be summed, not averaged:\n%s", q)
	}
}
