package messages

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Measurement is one timestamped electrical reading of a luminaria.
// Readings are produced by the backend and are never written by the dashboard.
type Measurement struct {
	IDLum          string    `json:"id_lum"`
	Fecha          time.Time `json:"fecha"`
	Consumo        float64   `json:"consumo"`   // kWh
	Corriente      float64   `json:"corriente"` // A
	Voltaje        float64   `json:"voltaje"`   // V
	EstadoRele     bool      `json:"estado_rele"`
	Falla          bool      `json:"falla"`
	Sobreconsumo   bool      `json:"sobreconsumo"`
	PerdidaEnergia bool      `json:"perdida_energia"`
}

// UnmarshalJSON accepts id_lum as number or string and the timestamp layouts
// the backend emits.
func (m *Measurement) UnmarshalJSON(b []byte) error {
	var raw struct {
		IDLum          json.RawMessage `json:"id_lum"`
		Fecha          string          `json:"fecha"`
		Consumo        float64         `json:"consumo"`
		Corriente      float64         `json:"corriente"`
		Voltaje        float64         `json:"voltaje"`
		EstadoRele     bool            `json:"estado_rele"`
		Falla          bool            `json:"falla"`
		Sobreconsumo   bool            `json:"sobreconsumo"`
		PerdidaEnergia bool            `json:"perdida_energia"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	id, err := FlexID(raw.IDLum)
	if err != nil {
		return err
	}
	t, err := ParseFecha(raw.Fecha)
	if err != nil {
		return err
	}
	*m = Measurement{
		IDLum:          id,
		Fecha:          t,
		Consumo:        raw.Consumo,
		Corriente:      raw.Corriente,
		Voltaje:        raw.Voltaje,
		EstadoRele:     raw.EstadoRele,
		Falla:          raw.Falla,
		Sobreconsumo:   raw.Sobreconsumo,
		PerdidaEnergia: raw.PerdidaEnergia,
	}
	return nil
}

var fechaLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseFecha parses the timestamp formats found in backend payloads.
// An empty string yields the zero time.
func ParseFecha(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	var firstErr error
	for _, layout := range fechaLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// FlexID decodes an identifier that may arrive as a JSON string or number.
func FlexID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return "", err
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}
