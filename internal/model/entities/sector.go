package entities

import (
	"strconv"
	"strings"
)

// Sector is a named geographic grouping of luminarias.
// Luminarias point at the sector through their IDSector; the sector does not own them.
type Sector struct {
	ID         string   `json:"_id,omitempty"`
	IDSector   int      `json:"id_sector,omitempty"`
	Nombre     string   `json:"nombre"`
	Zona       string   `json:"zona"`
	Luminarias []string `json:"luminarias,omitempty"`
}

// Key returns the identifier luminarias use to reference this sector:
// the storage id when present, the numeric id otherwise.
func (s Sector) Key() string {
	if id := strings.TrimSpace(s.ID); id != "" {
		return id
	}
	if s.IDSector != 0 {
		return strconv.Itoa(s.IDSector)
	}
	return ""
}
