package model

import (
	"github.com/LeonardoBeccarini/lumicert/internal/model/entities"
	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
)

// Aliases of the entity types shared by the services.

type (
	Luminaria    = entities.Luminaria
	Sector       = entities.Sector
	DeviceState  = entities.DeviceState
	SectorState  = entities.SectorState
	Tag          = entities.Tag
	Measurement  = messages.Measurement
	Notificacion = messages.Notificacion
	Reporte      = messages.Reporte
	AmbientLight = messages.AmbientLight
)

const (
	DeviceSinDatos     = entities.DeviceSinDatos
	DeviceBien         = entities.DeviceBien
	DeviceSobreconsumo = entities.DeviceSobreconsumo
	DeviceFalla        = entities.DeviceFalla

	SectorOK      = entities.SectorOK
	SectorWarning = entities.SectorWarning
	SectorError   = entities.SectorError
)
