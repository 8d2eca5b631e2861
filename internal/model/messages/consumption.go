package messages

// ConsumoTotalMes summarises the current month.
type ConsumoTotalMes struct {
	ConsumoTotalMes       float64 `json:"consumoTotalMes"`
	ConsumoPromedioDiario float64 `json:"consumoPromedioDiario"`
	ConsumoPromedioMes    float64 `json:"consumoPromedioMes"`
	Mes                   int     `json:"mes"`
	Anio                  int     `json:"año"`
	DiasTranscurridos     int     `json:"diasTranscurridos"`
	TotalDiasMes          int     `json:"totalDiasMes"`
	Mediciones            int     `json:"mediciones"`
}

// ConsumoMesAnterior is the total of the previous month.
type ConsumoMesAnterior struct {
	ConsumoMesAnterior float64 `json:"consumoMesAnterior"`
	Mes                int     `json:"mes"`
	Anio               int     `json:"año"`
}

// ConsumoDiario is the energy used on one day.
type ConsumoDiario struct {
	Dia     int     `json:"dia"`
	Mes     int     `json:"mes,omitempty"`
	Anio    int     `json:"año,omitempty"`
	Consumo float64 `json:"consumo"`
	Fecha   string  `json:"fecha,omitempty"`
}

// ConsumoSector is the energy used by one sector.
type ConsumoSector struct {
	IDSector     string  `json:"id_sector"`
	NombreSector string  `json:"nombre_sector"`
	Consumo      float64 `json:"consumo"`
}

// ConsumoHora is the average consumption observed at one hour of the day.
type ConsumoHora struct {
	Hora            int     `json:"hora"`
	ConsumoPromedio float64 `json:"consumoPromedio"`
}

// Estadisticas are the fleet-wide counters computed by the backend.
type Estadisticas struct {
	TotalLuminarias        int `json:"totalLuminarias"`
	LuminariasFuncionando  int `json:"luminariasFuncionando"`
	LuminariasConProblemas int `json:"luminariasConProblemas"`
}
