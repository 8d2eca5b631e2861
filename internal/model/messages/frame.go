package messages

// TelemetryFrame is the MQTT payload published by the luminaria controllers.
type TelemetryFrame struct {
	TS         int64            `json:"ts"`
	TSISO      string           `json:"ts_iso"`
	Modo       string           `json:"modo"`
	Lux        float64          `json:"lux"`
	Alarms     FrameAlarms      `json:"alarms"`
	Bank       map[string]bool  `json:"bank"`
	Luminarias []FrameLuminaria `json:"luminarias"`
}

// FrameAlarms are the light sensor alarms of a frame.
type FrameAlarms struct {
	BH1Fail   bool `json:"bh1_fail"`
	BHDiscrep bool `json:"bh_discrep"`
}

// FrameLuminaria is the raw electrical reading of one luminaria in a frame.
type FrameLuminaria struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Relay          bool    `json:"relay"`
	OK             bool    `json:"ok"`
	Volts          float64 `json:"V"`
	MilliAmps      float64 `json:"mA"`
	Watts          float64 `json:"W"`
	FailLowCurrent bool    `json:"fail_low_current"`
	Theft          bool    `json:"theft"`
	Overcurrent    bool    `json:"overcurrent"`
}
