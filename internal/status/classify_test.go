package status

import (
	"testing"

	"github.com/LeonardoBeccarini/lumicert/internal/model/entities"
	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
)

func TestClassifyDeviceNoData(t *testing.T) {
	got := ClassifyDevice(nil)
	if got.State != entities.DeviceSinDatos {
		t.Fatalf("nil measurement: got %s want %s", got.State, entities.DeviceSinDatos)
	}
	if len(got.Tags) != 0 {
		t.Fatalf("nil measurement should carry no tags, got %v", got.Tags)
	}
}

func TestClassifyDeviceFlagGrid(t *testing.T) {
	// every combination of the three fault flags, relay on
	for _, falla := range []bool{false, true} {
		for _, sobre := range []bool{false, true} {
			for _, perdida := range []bool{false, true} {
				m := &messages.Measurement{EstadoRele: true, Falla: falla, Sobreconsumo: sobre, PerdidaEnergia: perdida}
				got := ClassifyDevice(m)

				want := entities.DeviceBien
				switch {
				case falla:
					want = entities.DeviceFalla
				case sobre:
					want = entities.DeviceSobreconsumo
				}
				if got.State != want {
					t.Fatalf("falla=%v sobre=%v perdida=%v: got %s want %s", falla, sobre, perdida, got.State, want)
				}
				if got.Has(entities.TagPerdidaEnergia) != perdida {
					t.Fatalf("falla=%v sobre=%v perdida=%v: perdida tag mismatch %v", falla, sobre, perdida, got.Tags)
				}
			}
		}
	}
}

func TestClassifyDeviceDeterministic(t *testing.T) {
	m := &messages.Measurement{Falla: true, Sobreconsumo: true, PerdidaEnergia: true}
	first := ClassifyDevice(m)
	for i := 0; i < 50; i++ {
		got := ClassifyDevice(m)
		if got.State != first.State || len(got.Tags) != len(first.Tags) {
			t.Fatalf("iteration %d: got %+v want %+v", i, got, first)
		}
	}
	if *m != (messages.Measurement{Falla: true, Sobreconsumo: true, PerdidaEnergia: true}) {
		t.Fatalf("classification mutated its input: %+v", *m)
	}
}

func TestClassifyDeviceRelayOffTag(t *testing.T) {
	got := ClassifyDevice(&messages.Measurement{EstadoRele: false})
	if got.State != entities.DeviceBien {
		t.Fatalf("relay off alone must not change the state, got %s", got.State)
	}
	if !got.Has(entities.TagReleApagado) {
		t.Fatalf("expected %s tag, got %v", entities.TagReleApagado, got.Tags)
	}
}

func TestWorseIsSymmetric(t *testing.T) {
	states := []entities.DeviceState{entities.DeviceSinDatos, entities.DeviceBien, entities.DeviceSobreconsumo, entities.DeviceFalla}
	for i, a := range states {
		for j, b := range states {
			want := a
			if j > i {
				want = b
			}
			if got := Worse(a, b); got != want {
				t.Fatalf("Worse(%s,%s)=%s want %s", a, b, got, want)
			}
			if Worse(a, b) != Worse(b, a) {
				t.Fatalf("Worse not symmetric for %s,%s", a, b)
			}
		}
	}
}
