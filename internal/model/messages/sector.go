package messages

import (
	"encoding/json"

	"github.com/LeonardoBeccarini/lumicert/internal/model/entities"
)

// DetalleSector is the backend summary of one sector.
type DetalleSector struct {
	ID                        string  `json:"_id,omitempty"`
	Nombre                    string  `json:"nombre"`
	Zona                      string  `json:"zona"`
	ConsumoTotal              float64 `json:"consumoTotal"`
	ConsumoPromedio           float64 `json:"consumoPromedio"`
	TotalLuminarias           int     `json:"totalLuminarias"`
	LuminariasFuncionando     int     `json:"luminariasFuncionando"`
	LuminariasConFalla        int     `json:"luminariasConFalla"`
	LuminariasConSobreconsumo int     `json:"luminariasConSobreconsumo"`
}

// LuminariaConMedicion is a sector member with its latest reading, if any.
type LuminariaConMedicion struct {
	IDLum          string               `json:"id_lum"`
	Modelo         string               `json:"modelo"`
	IDSector       string               `json:"id_sector,omitempty"`
	UltimaMedicion *Measurement         `json:"ultimaMedicion"`
	Estado         entities.DeviceState `json:"estado,omitempty"`
}

// UnmarshalJSON accepts id_lum and id_sector as strings or numbers.
func (l *LuminariaConMedicion) UnmarshalJSON(b []byte) error {
	type plain LuminariaConMedicion
	var raw struct {
		plain
		IDLum    json.RawMessage `json:"id_lum"`
		IDSector json.RawMessage `json:"id_sector"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	id, err := FlexID(raw.IDLum)
	if err != nil {
		return err
	}
	sector, err := FlexID(raw.IDSector)
	if err != nil {
		return err
	}
	*l = LuminariaConMedicion(raw.plain)
	l.IDLum = id
	l.IDSector = sector
	return nil
}

// SectorFlags are the aggregated fault flags the backend reports per sector.
type SectorFlags struct {
	Falla        bool `json:"falla"`
	Sobreconsumo bool `json:"sobreconsumo"`
}

// SectorInput is the body of sector create and update requests.
type SectorInput struct {
	Nombre string `json:"nombre"`
	Zona   string `json:"zona"`
}

// LinkLuminarias is the body of the bulk assignment request.
type LinkLuminarias struct {
	Luminarias []string `json:"luminarias"`
}

// SectorConMedicion is a sector together with the flags of its latest aggregated reading.
type SectorConMedicion struct {
	entities.Sector
	UltimaMedicion *SectorFlags `json:"ultimaMedicion"`
}
