package messages

import "time"

// Notificacion is a read-only event record raised by the backend.
type Notificacion struct {
	ID          string `json:"_id"`
	IDLuminaria string `json:"id_luminaria"`
	Fecha       string `json:"fecha"`
	Hora        string `json:"hora"`
	Descripcion string `json:"descripcion"`
}

// Reporte is a damage report filed by an operator.
type Reporte struct {
	ID          string `json:"_id,omitempty"`
	IDLuminaria string `json:"id_luminaria,omitempty"`
	Fecha       string `json:"fecha"`
	Descripcion string `json:"descripcion"`
}

// NuevoReporte is the body of a report creation request.
type NuevoReporte struct {
	IDLuminaria string `json:"id_luminaria,omitempty"`
	Descripcion string `json:"descripcion"`
}

// AmbientLight is the latest reading of the street light sensor.
type AmbientLight struct {
	Lux          float64   `json:"lux"`
	Fecha        time.Time `json:"fecha"`
	Modo         string    `json:"modo,omitempty"` // AUTO | MANUAL
	FallaSensor  bool      `json:"falla_sensor"`
	Discrepancia bool      `json:"discrepancia"`
}
