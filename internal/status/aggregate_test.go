package status

import (
	"testing"

	"github.com/LeonardoBeccarini/lumicert/internal/model/entities"
	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
)

func meas(falla, sobre bool) *messages.Measurement {
	return &messages.Measurement{EstadoRele: true, Falla: falla, Sobreconsumo: sobre}
}

func TestAggregateSectorEmpty(t *testing.T) {
	for name, in := range map[string]map[string]*messages.Measurement{
		"nil":   nil,
		"empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			got := AggregateSector("s1", in)
			if got.State != entities.SectorOK {
				t.Fatalf("state=%s want ok", got.State)
			}
			if got.Counts != (Counts{}) {
				t.Fatalf("counts=%+v want zero", got.Counts)
			}
		})
	}
}

func TestAggregateSectorPrecedence(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]*messages.Measurement
		want entities.SectorState
	}{
		{name: "all bien", in: map[string]*messages.Measurement{"a": meas(false, false), "b": meas(false, false)}, want: entities.SectorOK},
		{name: "one sobreconsumo", in: map[string]*messages.Measurement{"a": meas(false, false), "b": meas(false, true)}, want: entities.SectorWarning},
		{name: "falla beats sobreconsumo", in: map[string]*messages.Measurement{"a": meas(true, false), "b": meas(false, true)}, want: entities.SectorError},
		{name: "falla with both flags", in: map[string]*messages.Measurement{"a": meas(true, true)}, want: entities.SectorError},
		{name: "no data only", in: map[string]*messages.Measurement{"a": nil, "b": nil}, want: entities.SectorOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := AggregateSector("s", tc.in).State; got != tc.want {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}

func TestAggregateSectorNoDataCountsOnlyInTotal(t *testing.T) {
	got := AggregateSector("s", map[string]*messages.Measurement{
		"a": nil,
		"b": meas(false, false),
		"c": meas(false, true),
	})
	want := Counts{Funcionando: 1, Falla: 0, Sobreconsumo: 1, Total: 3}
	if got.Counts != want {
		t.Fatalf("counts=%+v want %+v", got.Counts, want)
	}
}

func TestAggregateFleetScenario(t *testing.T) {
	sectors := []entities.Sector{{ID: "A", Nombre: "Norte"}, {ID: "B", Nombre: "Sur"}, {ID: "C", Nombre: "Vacio"}}
	lums := []entities.Luminaria{
		{IDLum: "L1", IDSector: "A"},
		{IDLum: "L2", IDSector: "A"},
		{IDLum: "L3", IDSector: "B"},
		{IDLum: "L4"},                  // unassigned
		{IDLum: "L5", IDSector: "ZZZ"}, // unknown sector
	}
	latest := map[string]*messages.Measurement{
		"L1": meas(true, false),
		"L2": meas(false, false),
		"L3": meas(false, true),
		"L4": meas(true, false),
		"L5": meas(true, false),
	}

	got := AggregateFleet(sectors, lums, latest)
	if len(got) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(got))
	}

	a, b, c := got[0], got[1], got[2]
	if a.SectorID != "A" || a.State != entities.SectorError || a.Counts != (Counts{Funcionando: 1, Falla: 1, Sobreconsumo: 0, Total: 2}) {
		t.Fatalf("sector A: %+v", a)
	}
	if b.SectorID != "B" || b.State != entities.SectorWarning || b.Counts != (Counts{Funcionando: 0, Falla: 0, Sobreconsumo: 1, Total: 1}) {
		t.Fatalf("sector B: %+v", b)
	}
	if c.SectorID != "C" || c.State != entities.SectorOK || c.Counts != (Counts{}) {
		t.Fatalf("sector C: %+v", c)
	}
}

func TestAggregateMembersMissingMeasurement(t *testing.T) {
	got := AggregateMembers("A", []messages.LuminariaConMedicion{
		{IDLum: "L1", UltimaMedicion: meas(false, false)},
		{IDLum: "L2"},
	})
	if got.Counts != (Counts{Funcionando: 1, Total: 2}) || got.State != entities.SectorOK {
		t.Fatalf("got %+v", got)
	}
}

func TestStateFromFlags(t *testing.T) {
	tests := []struct {
		in   messages.SectorFlags
		want entities.SectorState
	}{
		{messages.SectorFlags{}, entities.SectorOK},
		{messages.SectorFlags{Sobreconsumo: true}, entities.SectorWarning},
		{messages.SectorFlags{Falla: true}, entities.SectorError},
		{messages.SectorFlags{Falla: true, Sobreconsumo: true}, entities.SectorError},
	}
	for _, tc := range tests {
		if got := StateFromFlags(tc.in); got != tc.want {
			t.Fatalf("StateFromFlags(%+v)=%s want %s", tc.in, got, tc.want)
		}
	}
}

func TestAggregateMembersRepeatedAndEmptyIDs(t *testing.T) {
	got := AggregateMembers("A", []messages.LuminariaConMedicion{
		{IDLum: "", UltimaMedicion: meas(true, false)},
		{IDLum: "", UltimaMedicion: meas(false, false)},
		{IDLum: "7", UltimaMedicion: meas(false, true)},
		{IDLum: "7"},
	})
	want := Counts{Funcionando: 1, Falla: 1, Sobreconsumo: 1, Total: 4}
	if got.State != entities.SectorError || got.Counts != want {
		t.Fatalf("got %+v, want error with %+v", got, want)
	}
}

func TestAggregateFleetRepeatedLuminaria(t *testing.T) {
	sectors := []entities.Sector{{ID: "A"}}
	lums := []entities.Luminaria{
		{IDLum: "L1", IDSector: "A"},
		{IDLum: "L1", IDSector: "A"},
		{IDLum: "L2", IDSector: "A"},
	}
	latest := map[string]*messages.Measurement{"L1": meas(false, true)}

	got := AggregateFleet(sectors, lums, latest)
	want := Counts{Sobreconsumo: 2, Total: 3}
	if len(got) != 1 || got[0].Counts != want || got[0].State != entities.SectorWarning {
		t.Fatalf("got %+v, want warning with %+v", got, want)
	}
}
