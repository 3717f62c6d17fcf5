package lpgan

import "time"

// Result is the typed outcome of a command. Each variant reports the Kind of
// the command it answers.
type Result interface {
	Kind() Kind
}

type GpsMode struct {
	Enabled bool `json:"enabled"`
}

func (GpsMode) Kind() Kind { return KindSetGpsMode }

// Ack is returned by commands that carry no payload on success.
type Ack struct {
	Command Kind `json:"-"`
}

func (a Ack) Kind() Kind { return a.Command }

type FirmwareVersion struct {
	Version string `json:"firmware_version"`
}

func (FirmwareVersion) Kind() Kind { return KindGetFirmwareVersion }

type ModemInfo struct {
	HWTypeStr  string `json:"hw_type_str"`
	HWTypeInt  int64  `json:"hw_type_int"`
	FWVersion  string `json:"fw_version"`
	ModemNoStr string `json:"modem_no_str"`
	ModemNoInt int64  `json:"modem_no_int"`
}

func (ModemInfo) Kind() Kind { return KindGetModemInfo }

// Location is the modem's position as reported by get_location and
// set_location. The fix counters are passed through as sent; the modem uses
// math.MinInt32 for "unknown".
type Location struct {
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	SecondsSinceLastFix int64   `json:"seconds_since_last_fix"`
	SecondsUntilNextFix int64   `json:"seconds_until_next_fix"`
	Altitude            float64 `json:"altitude"`
	Command             Kind    `json:"-"`
}

func (l Location) Kind() Kind { return l.Command }

type Datetime struct {
	Value   string `json:"datetime"`
	Command Kind   `json:"-"`
}

func (d Datetime) Kind() Kind { return d.Command }

// Time parses Value using DatetimeLayout.
func (d Datetime) Time() (time.Time, error) {
	return time.Parse(DatetimeLayout, d.Value)
}

type Alarm struct {
	ID          int64 `json:"alarm_id"`
	SecondsLeft int64 `json:"seconds_left_until_alarm"`
}

func (Alarm) Kind() Kind { return KindGetNextAlarm }

type Pass struct {
	SecondsLeft int64 `json:"seconds_left_until_pass"`
}

func (Pass) Kind() Kind { return KindGetNextPass }

type Sleep struct {
	SecondsUntilAlarm int64 `json:"seconds_left_until_alarm"`
	AlarmID           int64 `json:"alarm_id"`
}

func (Sleep) Kind() Kind { return KindGoToSleep }

type PayloadOverDebug struct {
	Enabled bool `json:"toggle_enabled"`
}

func (PayloadOverDebug) Kind() Kind { return KindTogglePayloadOverDebug }

type Payload struct {
	Bytes int64 `json:"payload_bytes"`
}

func (Payload) Kind() Kind { return KindSetPayload }
