package messages

import (
	"encoding/json"
	"testing"
)

func TestLuminariaConMedicionFlexibleIDs(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantLum    string
		wantSector string
	}{
		{name: "numbers", in: `{"id_lum":4,"modelo":"LX","id_sector":12,"ultimaMedicion":{"id_lum":4,"consumo":1.5,"falla":true}}`, wantLum: "4", wantSector: "12"},
		{name: "strings", in: `{"id_lum":" 4 ","modelo":"LX","id_sector":"A","ultimaMedicion":null}`, wantLum: "4", wantSector: "A"},
		{name: "missing sector", in: `{"id_lum":4,"modelo":"LX"}`, wantLum: "4"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var l LuminariaConMedicion
			if err := json.Unmarshal([]byte(tc.in), &l); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if l.IDLum != tc.wantLum || l.IDSector != tc.wantSector || l.Modelo != "LX" {
				t.Fatalf("got %+v", l)
			}
		})
	}
}

func TestLuminariaConMedicionKeepsMeasurement(t *testing.T) {
	var members []LuminariaConMedicion
	body := `[{"id_lum":4,"modelo":"LX","estado":"falla","ultimaMedicion":{"id_lum":4,"consumo":1.5,"falla":true}},{"id_lum":5,"modelo":"LX"}]`
	if err := json.Unmarshal([]byte(body), &members); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("members = %d", len(members))
	}
	m := members[0].UltimaMedicion
	if m == nil || m.IDLum != "4" || m.Consumo != 1.5 || !m.Falla || members[0].Estado != "falla" {
		t.Fatalf("first member = %+v %+v", members[0], m)
	}
	if members[1].IDLum != "5" || members[1].UltimaMedicion != nil {
		t.Fatalf("second member = %+v", members[1])
	}
}

func TestLuminariaConMedicionRejectsBadID(t *testing.T) {
	var l LuminariaConMedicion
	if err := json.Unmarshal([]byte(`{"id_lum":true}`), &l); err == nil {
		t.Fatal("want error for boolean id_lum")
	}
}
