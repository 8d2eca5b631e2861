// Package status derives device and sector health from raw measurements.
package status

import (
	"github.com/LeonardoBeccarini/lumicert/internal/model/entities"
	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
)

// deviceRank orders device states by severity; the highest-ranked state wins.
var deviceRank = map[entities.DeviceState]int{
	entities.DeviceSinDatos:     0,
	entities.DeviceBien:         1,
	entities.DeviceSobreconsumo: 2,
	entities.DeviceFalla:        3,
}

// flagRules maps each fault flag to the state it raises a device to.
// Rules are combined by rank, so their order here does not matter.
var flagRules = []struct {
	set   func(*messages.Measurement) bool
	state entities.DeviceState
}{
	{func(m *messages.Measurement) bool { return m.Falla }, entities.DeviceFalla},
	{func(m *messages.Measurement) bool { return m.Sobreconsumo }, entities.DeviceSobreconsumo},
}

// tagRules attach informational tags; they never change the rank.
var tagRules = []struct {
	set func(*messages.Measurement) bool
	tag entities.Tag
}{
	{func(m *messages.Measurement) bool { return m.PerdidaEnergia }, entities.TagPerdidaEnergia},
	{func(m *messages.Measurement) bool { return !m.EstadoRele }, entities.TagReleApagado},
}

// Classification is the derived health of one device.
type Classification struct {
	State entities.DeviceState `json:"estado"`
	Tags  []entities.Tag       `json:"etiquetas,omitempty"`
}

// Has reports whether the classification carries tag t.
func (c Classification) Has(t entities.Tag) bool {
	for _, x := range c.Tags {
		if x == t {
			return true
		}
	}
	return false
}

// ClassifyDevice maps the latest measurement of a device to its health.
// A nil measurement is the no-data case, distinct from Bien.
func ClassifyDevice(m *messages.Measurement) Classification {
	if m == nil {
		return Classification{State: entities.DeviceSinDatos}
	}
	state := entities.DeviceBien
	for _, r := range flagRules {
		if r.set(m) {
			state = Worse(state, r.state)
		}
	}
	var tags []entities.Tag
	for _, r := range tagRules {
		if r.set(m) {
			tags = append(tags, r.tag)
		}
	}
	return Classification{State: state, Tags: tags}
}

// Worse returns the higher-ranked of two device states.
func Worse(a, b entities.DeviceState) entities.DeviceState {
	if deviceRank[b] > deviceRank[a] {
		return b
	}
	return a
}

// Rank exposes the severity of a device state; unknown states rank as no data.
func Rank(s entities.DeviceState) int {
	return deviceRank[s]
}
