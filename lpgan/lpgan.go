// Package lpgan encodes commands for, and decodes responses from, a Hiber
// satellite modem speaking the line-oriented LPGAN API over a serial link.
//
// The package performs no I/O. A caller encodes a Command, writes the result
// to the modem, reads exactly one response line back and hands it to
// Interpret together with the command's Kind.
package lpgan

const (
	// Terminal Control
	CRLF = "\r\n"

	// Response prefixes
	ResponsePrefix       = "API"
	ResponseOpen         = "API("
	LegacyResponsePrefix = "Hiber API "
)

// Kind identifies a modem operation. Its String form is the command name
// used on the wire.
type Kind int

const (
	KindSetGpsMode Kind = iota + 1
	KindDoGpsFix
	KindGetFirmwareVersion
	KindGetModemInfo
	KindSetModemNumber
	KindGetLocation
	KindSetLocation
	KindGetDatetime
	KindSetDatetime
	KindGetNextAlarm
	KindGetNextPass
	KindGoToSleep
	KindTogglePayloadOverDebug
	KindSetPayload
)

var kindNames = map[Kind]string{
	KindSetGpsMode:             "set_gps_mode",
	KindDoGpsFix:               "do_gps_fix",
	KindGetFirmwareVersion:     "get_firmware_version",
	KindGetModemInfo:           "get_modem_info",
	KindSetModemNumber:         "set_modem_number",
	KindGetLocation:            "get_location",
	KindSetLocation:            "set_location",
	KindGetDatetime:            "get_datetime",
	KindSetDatetime:            "set_datetime",
	KindGetNextAlarm:           "get_next_alarm",
	KindGetNextPass:            "get_next_pass",
	KindGoToSleep:              "go_to_sleep",
	KindTogglePayloadOverDebug: "toggle_payload_over_debug",
	KindSetPayload:             "set_payload",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind returns the Kind whose wire name is name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Kinds returns every supported Kind in wire-protocol order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames))
	for k := KindSetGpsMode; k <= KindSetPayload; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
