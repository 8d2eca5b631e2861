// Package consumption computes the derived energy metrics shown on the dashboard.
package consumption

import (
	"time"

	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
)

// HoursPerDay is the length of a dense hourly series.
const HoursPerDay = 24

// Variation is the month over month change in percent.
// It is defined as 0 when the previous month is 0.
func Variation(cur, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}

// HourlySeries densifies a sparse hourly profile into 24 ascending slots.
// Missing hours are 0, hours outside 0..23 are dropped and repeated hours are averaged,
// so the result does not depend on input order.
func HourlySeries(in []messages.ConsumoHora) []messages.ConsumoHora {
	var sum [HoursPerDay]float64
	var n [HoursPerDay]int
	for _, h := range in {
		if h.Hora < 0 || h.Hora >= HoursPerDay {
			continue
		}
		sum[h.Hora] += h.ConsumoPromedio
		n[h.Hora]++
	}
	out := make([]messages.ConsumoHora, HoursPerDay)
	for hora := range out {
		out[hora].Hora = hora
		if n[hora] > 0 {
			out[hora].ConsumoPromedio = sum[hora] / float64(n[hora])
		}
	}
	return out
}

// DailyPoint is one day of a dense monthly series.
type DailyPoint struct {
	Dia     int     `json:"dia"`
	Consumo float64 `json:"consumo"`
}

// DailySeries densifies per-day consumption into days 1..days. Repeated days are summed.
// With days <= 0 the series extends to the last day present in the input.
func DailySeries(in []messages.ConsumoDiario, days int) []DailyPoint {
	if days <= 0 {
		for _, d := range in {
			if d.Dia > days {
				days = d.Dia
			}
		}
	}
	if days <= 0 {
		return []DailyPoint{}
	}
	out := make([]DailyPoint, days)
	for i := range out {
		out[i].Dia = i + 1
	}
	for _, d := range in {
		if d.Dia < 1 || d.Dia > days {
			continue
		}
		out[d.Dia-1].Consumo += d.Consumo
	}
	return out
}

// DaysIn returns the number of days of a calendar month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthComparison joins the current and previous month totals.
type MonthComparison struct {
	ConsumoTotalMes       float64 `json:"consumoTotalMes"`
	ConsumoPromedioDiario float64 `json:"consumoPromedioDiario"`
	ConsumoMesAnterior    float64 `json:"consumoMesAnterior"`
	Variacion             float64 `json:"variacion"`
	Mes                   int     `json:"mes"`
	Anio                  int     `json:"año"`
}

// CompareMonths builds the month comparison card.
func CompareMonths(cur messages.ConsumoTotalMes, prev messages.ConsumoMesAnterior) MonthComparison {
	return MonthComparison{
		ConsumoTotalMes:       cur.ConsumoTotalMes,
		ConsumoPromedioDiario: cur.ConsumoPromedioDiario,
		ConsumoMesAnterior:    prev.ConsumoMesAnterior,
		Variacion:             Variation(cur.ConsumoTotalMes, prev.ConsumoMesAnterior),
		Mes:                   cur.Mes,
		Anio:                  cur.Anio,
	}
}
