package entities

// DeviceState is the derived health of one luminaria. Never stored.
type DeviceState string

const (
	DeviceSinDatos     DeviceState = "SinDatos"
	DeviceBien         DeviceState = "Bien"
	DeviceSobreconsumo DeviceState = "Sobreconsumo"
	DeviceFalla        DeviceState = "Falla"
)

// SectorState is the derived health of a sector. Never stored.
type SectorState string

const (
	SectorOK      SectorState = "ok"
	SectorWarning SectorState = "warning"
	SectorError   SectorState = "error"
)

// Tag is an informational marker that does not change a device's rank.
type Tag string

const (
	TagPerdidaEnergia Tag = "perdida_energia"
	TagReleApagado    Tag = "rele_apagado"
)
