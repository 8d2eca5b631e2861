package status

import (
	"github.com/LeonardoBeccarini/lumicert/internal/model/entities"
	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
)

// sectorOf lifts a device state to the sector granularity.
var sectorOf = map[entities.DeviceState]entities.SectorState{
	entities.DeviceSinDatos:     entities.SectorOK,
	entities.DeviceBien:         entities.SectorOK,
	entities.DeviceSobreconsumo: entities.SectorWarning,
	entities.DeviceFalla:        entities.SectorError,
}

var sectorRank = map[entities.SectorState]int{
	entities.SectorOK:      0,
	entities.SectorWarning: 1,
	entities.SectorError:   2,
}

// Counts are the sector summary counters. Devices without data only count in Total.
type Counts struct {
	Funcionando  int `json:"funcionando"`
	Falla        int `json:"falla"`
	Sobreconsumo int `json:"sobreconsumo"`
	Total        int `json:"total"`
}

// SectorSummary is the derived health of a sector.
type SectorSummary struct {
	SectorID string               `json:"id_sector"`
	State    entities.SectorState `json:"estado"`
	Counts   Counts               `json:"conteo"`
}

// SectorStateOf maps a device state to the sector state it implies.
func SectorStateOf(s entities.DeviceState) entities.SectorState {
	if st, ok := sectorOf[s]; ok {
		return st
	}
	return entities.SectorOK
}

// WorseSector returns the higher-ranked of two sector states.
func WorseSector(a, b entities.SectorState) entities.SectorState {
	if sectorRank[b] > sectorRank[a] {
		return b
	}
	return a
}

// add folds one member device into the summary. A nil measurement means the device
// has no data yet.
func (s *SectorSummary) add(m *messages.Measurement) {
	c := ClassifyDevice(m)
	s.Counts.Total++
	switch c.State {
	case entities.DeviceBien:
		s.Counts.Funcionando++
	case entities.DeviceFalla:
		s.Counts.Falla++
	case entities.DeviceSobreconsumo:
		s.Counts.Sobreconsumo++
	}
	s.State = WorseSector(s.State, SectorStateOf(c.State))
}

func newSummary(sectorID string) SectorSummary {
	return SectorSummary{SectorID: sectorID, State: entities.SectorOK}
}

// AggregateSector rolls the latest measurement of every member device up to the sector.
// A nil entry means the device has no measurement yet.
func AggregateSector(sectorID string, byDevice map[string]*messages.Measurement) SectorSummary {
	out := newSummary(sectorID)
	for _, m := range byDevice {
		out.add(m)
	}
	return out
}

// AggregateFleet groups luminarias by sector and aggregates each sector in the given order.
// Sectors without members are reported as ok with zero counts; unassigned luminarias and
// luminarias pointing at unknown sectors are skipped. Every listed luminaria counts once,
// even when two entries share an id.
func AggregateFleet(sectors []entities.Sector, luminarias []entities.Luminaria, latest map[string]*messages.Measurement) []SectorSummary {
	index := make(map[string]int, len(sectors))
	out := make([]SectorSummary, 0, len(sectors))
	for _, s := range sectors {
		if _, dup := index[s.Key()]; !dup {
			index[s.Key()] = len(out)
		}
		out = append(out, newSummary(s.Key()))
	}
	for _, l := range luminarias {
		if !l.Assigned() {
			continue
		}
		i, ok := index[l.IDSector]
		if !ok {
			continue
		}
		out[i].add(latest[l.IDLum])
	}
	// a sector listed twice reports the same members both times
	for j, s := range sectors {
		if i := index[s.Key()]; i != j {
			out[j] = out[i]
		}
	}
	return out
}

// AggregateMembers aggregates the luminarias the backend returns for one sector.
// Members are folded one by one, so empty or repeated ids are all counted.
func AggregateMembers(sectorID string, members []messages.LuminariaConMedicion) SectorSummary {
	out := newSummary(sectorID)
	for i := range members {
		out.add(members[i].UltimaMedicion)
	}
	return out
}

// StateFromFlags maps the per-sector flags reported by the backend through the same
// ranking used for devices.
func StateFromFlags(f messages.SectorFlags) entities.SectorState {
	m := messages.Measurement{Falla: f.Falla, Sobreconsumo: f.Sobreconsumo, EstadoRele: true}
	return SectorStateOf(ClassifyDevice(&m).State)
}
