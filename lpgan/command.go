package lpgan

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DatetimeLayout is the timestamp format used by set_datetime and returned
// by get_datetime.
const DatetimeLayout = "2006-01-02T15:04:05Z"

var modemNumberPattern = regexp.MustCompile(`^\w{4} \w{4}$`)

// Command is a single request to the modem. The set of implementations is
// closed; every variant in this package maps to exactly one Kind.
type Command interface {
	Kind() Kind

	// arguments validates the command and returns its rendered argument
	// list. A nil list means the command is sent without parentheses.
	arguments() ([]string, error)
}

// Encode validates cmd and renders it as a CRLF terminated wire string.
func Encode(cmd Command) (string, error) {
	if cmd == nil {
		return "", invalidArgument("nil command")
	}
	args, err := cmd.arguments()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(cmd.Kind().String())
	if args != nil {
		b.WriteByte('(')
		b.WriteString(strings.Join(args, ","))
		b.WriteByte(')')
	}
	b.WriteString(CRLF)
	return b.String(), nil
}

type SetGpsMode struct {
	Enabled bool
}

func (SetGpsMode) Kind() Kind { return KindSetGpsMode }

func (c SetGpsMode) arguments() ([]string, error) {
	return []string{strconv.FormatBool(c.Enabled)}, nil
}

// DoGpsFix asks the modem to acquire a GPS fix. Hint is an optional free
// form argument passed through to the modem.
type DoGpsFix struct {
	Hint *string
}

func (DoGpsFix) Kind() Kind { return KindDoGpsFix }

func (c DoGpsFix) arguments() ([]string, error) {
	if c.Hint == nil {
		return nil, nil
	}
	if strings.ContainsAny(*c.Hint, "\"\r\n") {
		return nil, invalidArgument("gps fix hint must not contain quotes or line breaks")
	}
	return []string{quote(*c.Hint)}, nil
}

type GetFirmwareVersion struct{}

func (GetFirmwareVersion) Kind() Kind                   { return KindGetFirmwareVersion }
func (GetFirmwareVersion) arguments() ([]string, error) { return nil, nil }

type GetModemInfo struct{}

func (GetModemInfo) Kind() Kind                   { return KindGetModemInfo }
func (GetModemInfo) arguments() ([]string, error) { return nil, nil }

// SetModemNumber assigns the modem number, formatted as two groups of four
// word characters separated by a single space ("ABCD 1234").
type SetModemNumber struct {
	Number string
}

func (SetModemNumber) Kind() Kind { return KindSetModemNumber }

func (c SetModemNumber) arguments() ([]string, error) {
	if !modemNumberPattern.MatchString(c.Number) {
		return nil, invalidArgument("modem number %q must have format 'XXXX XXXX'", c.Number)
	}
	return []string{c.Number}, nil
}

type GetLocation struct{}

func (GetLocation) Kind() Kind                   { return KindGetLocation }
func (GetLocation) arguments() ([]string, error) { return nil, nil }

// SetLocation overrides the modem's position. Elevation is in metres.
type SetLocation struct {
	Latitude  float64
	Longitude float64
	Elevation float64
}

func (SetLocation) Kind() Kind { return KindSetLocation }

func (c SetLocation) arguments() ([]string, error) {
	if err := finite("latitude", c.Latitude); err != nil {
		return nil, err
	}
	if err := finite("longitude", c.Longitude); err != nil {
		return nil, err
	}
	if err := finite("elevation", c.Elevation); err != nil {
		return nil, err
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return nil, invalidArgument("latitude %f out of range [-90, 90]", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return nil, invalidArgument("longitude %f out of range [-180, 180]", c.Longitude)
	}
	return []string{
		quote(strconv.FormatFloat(c.Latitude, 'f', 6, 64)),
		quote(strconv.FormatFloat(c.Longitude, 'f', 6, 64)),
		quote(strconv.FormatFloat(c.Elevation, 'f', 1, 64)),
	}, nil
}

type GetDatetime struct{}

func (GetDatetime) Kind() Kind                   { return KindGetDatetime }
func (GetDatetime) arguments() ([]string, error) { return nil, nil }

// SetDatetime sets the modem clock. Time is sent in UTC.
type SetDatetime struct {
	Time time.Time
}

func (SetDatetime) Kind() Kind { return KindSetDatetime }

func (c SetDatetime) arguments() ([]string, error) {
	if c.Time.IsZero() {
		return nil, invalidArgument("datetime must be set")
	}
	return []string{quote(c.Time.UTC().Format(DatetimeLayout))}, nil
}

type GetNextAlarm struct{}

func (GetNextAlarm) Kind() Kind                   { return KindGetNextAlarm }
func (GetNextAlarm) arguments() ([]string, error) { return nil, nil }

type GetNextPass struct{}

func (GetNextPass) Kind() Kind                   { return KindGetNextPass }
func (GetNextPass) arguments() ([]string, error) { return nil, nil }

type GoToSleep struct{}

func (GoToSleep) Kind() Kind                   { return KindGoToSleep }
func (GoToSleep) arguments() ([]string, error) { return nil, nil }

type TogglePayloadOverDebug struct {
	Enabled bool
}

func (TogglePayloadOverDebug) Kind() Kind { return KindTogglePayloadOverDebug }

func (c TogglePayloadOverDebug) arguments() ([]string, error) {
	return []string{strconv.FormatBool(c.Enabled)}, nil
}

// SetPayload announces the number of payload bytes that will follow.
type SetPayload struct {
	Bytes int
}

func (SetPayload) Kind() Kind { return KindSetPayload }

func (c SetPayload) arguments() ([]string, error) {
	if c.Bytes < 0 {
		return nil, invalidArgument("payload byte count %d must not be negative", c.Bytes)
	}
	return []string{quote(strconv.Itoa(c.Bytes))}, nil
}

func quote(s string) string {
	return `"` + s + `"`
}

func finite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalidArgument("%s must be a finite number", name)
	}
	return nil
}
