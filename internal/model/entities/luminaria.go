package entities

import "strings"

// Ubicacion is the optional geolocation of a device.
type Ubicacion struct {
	Latitud  float64 `json:"latitud"`
	Longitud float64 `json:"longitud"`
}

// Luminaria represents a single monitored streetlight.
// IDLum is the stable device identifier; ID is the backend storage identifier.
type Luminaria struct {
	ID        string     `json:"_id"`
	IDLum     string     `json:"id_lum"`
	IDSector  string     `json:"id_sector,omitempty"` // empty when unassigned
	Modelo    string     `json:"modelo"`
	Ubicacion *Ubicacion `json:"ubicacion,omitempty"`
}

// Assigned reports whether the luminaria is bound to any sector.
func (l Luminaria) Assigned() bool {
	return strings.TrimSpace(l.IDSector) != ""
}

// BoundTo reports whether the luminaria is bound to the given sector key.
func (l Luminaria) BoundTo(sectorKey string) bool {
	return l.Assigned() && strings.TrimSpace(l.IDSector) == strings.TrimSpace(sectorKey)
}
