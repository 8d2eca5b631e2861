package feed

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
)

var errEmptyFrame = errors.New("feed: frame without luminarias nor lux")

// DecodeFrame parses a controller payload.
func DecodeFrame(payload []byte) (messages.TelemetryFrame, error) {
	var f messages.TelemetryFrame
	if err := json.Unmarshal(payload, &f); err != nil {
		return messages.TelemetryFrame{}, err
	}
	if len(f.Luminarias) == 0 && f.Lux == 0 && f.TS == 0 && strings.TrimSpace(f.TSISO) == "" {
		return messages.TelemetryFrame{}, errEmptyFrame
	}
	return f, nil
}

// FrameTime is the frame timestamp: ts (unix seconds) when set, ts_iso in loc otherwise,
// fallback when neither parses.
func FrameTime(f messages.TelemetryFrame, loc *time.Location, fallback time.Time) time.Time {
	if f.TS > 0 {
		return time.Unix(f.TS, 0).UTC()
	}
	if s := strings.TrimSpace(f.TSISO); s != "" {
		if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, loc); err == nil {
			return t.UTC()
		}
		if t, err := messages.ParseFecha(s); err == nil && !t.IsZero() {
			return t.UTC()
		}
	}
	return fallback.UTC()
}

// ToMeasurements converts the luminaria entries of a frame. The energy of one entry is
// its power held over the frame interval.
func ToMeasurements(f messages.TelemetryFrame, at time.Time, interval time.Duration) []messages.Measurement {
	out := make([]messages.Measurement, 0, len(f.Luminarias))
	for _, l := range f.Luminarias {
		out = append(out, messages.Measurement{
			IDLum:          strconv.Itoa(l.ID),
			Fecha:          at,
			Consumo:        l.Watts * interval.Hours() / 1000,
			Corriente:      l.MilliAmps / 1000,
			Voltaje:        l.Volts,
			EstadoRele:     l.Relay,
			Falla:          l.FailLowCurrent || !l.OK,
			Sobreconsumo:   l.Overcurrent,
			PerdidaEnergia: l.Theft,
		})
	}
	return out
}

func ToAmbientLight(f messages.TelemetryFrame, at time.Time) messages.AmbientLight {
	return messages.AmbientLight{
		Lux:          f.Lux,
		Fecha:        at,
		Modo:         strings.ToUpper(strings.TrimSpace(f.Modo)),
		FallaSensor:  f.Alarms.BH1Fail,
		Discrepancia: f.Alarms.BHDiscrep,
	}
}
