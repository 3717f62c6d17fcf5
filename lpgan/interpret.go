package lpgan

import (
	"strconv"
	"strings"
)

// interpreter turns a decoded response into the Result of one Kind.
type interpreter struct {
	// policy maps the response status to an error. A *Warning lets
	// decoding continue; any other error aborts it. Nil means only
	// StatusOK is accepted.
	policy func(StatusCode) error
	// fields is the minimum number of field tokens build reads.
	fields int
	build  func(kind Kind, f *fieldReader) Result
}

var interpreters = map[Kind]interpreter{
	KindSetGpsMode: {fields: 1, build: func(_ Kind, f *fieldReader) Result {
		return GpsMode{Enabled: strings.TrimSpace(f.text(0)) != "0"}
	}},
	KindDoGpsFix: {build: ack},
	KindGetFirmwareVersion: {fields: 1, build: func(_ Kind, f *fieldReader) Result {
		return FirmwareVersion{Version: f.text(0)}
	}},
	KindGetModemInfo: {fields: 5, build: func(_ Kind, f *fieldReader) Result {
		return ModemInfo{
			HWTypeStr:  f.text(0),
			HWTypeInt:  f.integer(1),
			FWVersion:  f.text(2),
			ModemNoStr: f.text(3),
			ModemNoInt: f.integer(4),
		}
	}},
	KindSetModemNumber: {build: ack},
	KindGetLocation:    {fields: 5, build: location},
	KindSetLocation:    {fields: 5, build: location},
	KindGetDatetime:    {fields: 1, build: datetime},
	KindSetDatetime:    {fields: 1, build: datetime},
	KindGetNextAlarm: {fields: 2, build: func(_ Kind, f *fieldReader) Result {
		return Alarm{ID: f.integer(0), SecondsLeft: f.integer(1)}
	}},
	KindGetNextPass: {fields: 1, build: func(_ Kind, f *fieldReader) Result {
		return Pass{SecondsLeft: f.integer(0)}
	}},
	KindGoToSleep: {policy: sleepPolicy, fields: 2, build: func(_ Kind, f *fieldReader) Result {
		return Sleep{SecondsUntilAlarm: f.integer(0), AlarmID: f.integer(1)}
	}},
	KindTogglePayloadOverDebug: {fields: 1, build: func(_ Kind, f *fieldReader) Result {
		return PayloadOverDebug{Enabled: f.boolean(0)}
	}},
	KindSetPayload: {fields: 1, build: func(_ Kind, f *fieldReader) Result {
		return Payload{Bytes: f.integer(0)}
	}},
}

// Interpret decodes line as the response to a command of the given kind.
//
// On success the error is nil. A recoverable outcome returns a *Warning,
// together with the decoded Result when the fields allowed it. Device
// reported failures return a *ProtocolError; grammar and coercion failures
// wrap ErrMalformedResponse, ErrUnknownStatusCode or ErrUnsupportedResponse.
func Interpret(kind Kind, line string) (Result, error) {
	if _, ok := interpreters[kind]; !ok {
		return nil, invalidArgument("unsupported command kind %d", int(kind))
	}
	resp, err := Decode(line)
	if err != nil {
		return nil, err
	}
	return InterpretResponse(kind, resp)
}

// InterpretResponse applies the status policy and field coercion of kind to
// an already decoded response.
func InterpretResponse(kind Kind, resp Response) (Result, error) {
	in, ok := interpreters[kind]
	if !ok {
		return nil, invalidArgument("unsupported command kind %d", int(kind))
	}

	policy := in.policy
	if policy == nil {
		policy = requireOK
	}

	var warning *Warning
	if err := policy(resp.Status); err != nil {
		w, ok := err.(*Warning)
		if !ok {
			return nil, err
		}
		warning = w
	}

	if len(resp.Fields) < in.fields {
		if warning != nil {
			return nil, warning
		}
		return nil, malformed("%s expects %d fields, got %d", kind, in.fields, len(resp.Fields))
	}

	f := &fieldReader{fields: resp.Fields}
	result := in.build(kind, f)
	if f.err != nil {
		if warning != nil {
			return nil, warning
		}
		return nil, f.err
	}
	if warning != nil {
		return result, warning
	}
	return result, nil
}

func requireOK(code StatusCode) error {
	if code == StatusOK {
		return nil
	}
	return protocolError(code)
}

// sleepPolicy accepts a started sleep and reports a high wakeup pin as a
// Warning so the caller can try again later.
func sleepPolicy(code StatusCode) error {
	switch code {
	case StatusOK, StatusSleeping:
		return nil
	case StatusWakeupPinHigh:
		text, _ := StatusText(code)
		return &Warning{Code: code, Text: text}
	default:
		return protocolError(code)
	}
}

func protocolError(code StatusCode) error {
	text, _ := StatusText(code)
	return &ProtocolError{Code: code, Text: text}
}

func ack(kind Kind, _ *fieldReader) Result {
	return Ack{Command: kind}
}

func location(kind Kind, f *fieldReader) Result {
	return Location{
		Latitude:            f.decimal(0),
		Longitude:           f.decimal(1),
		SecondsSinceLastFix: f.integer(2),
		SecondsUntilNextFix: f.integer(3),
		Altitude:            f.decimal(4),
		Command:             kind,
	}
}

func datetime(kind Kind, f *fieldReader) Result {
	return Datetime{Value: f.text(0), Command: kind}
}

// fieldReader coerces positional field tokens, remembering the first
// failure so builders can stay linear.
type fieldReader struct {
	fields []string
	err    error
}

func (f *fieldReader) text(i int) string {
	return f.fields[i]
}

func (f *fieldReader) integer(i int) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(f.fields[i]), 10, 64)
	if err != nil {
		f.fail(i, "an integer")
	}
	return v
}

func (f *fieldReader) decimal(i int) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(f.fields[i]), 64)
	if err != nil {
		f.fail(i, "a number")
	}
	return v
}

// boolean treats any non-zero integer as true. Non-numeric tokens fall back to
// strconv.ParseBool.
func (f *fieldReader) boolean(i int) bool {
	tok := strings.TrimSpace(f.fields[i])
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return n != 0
	}
	v, err := strconv.ParseBool(tok)
	if err != nil {
		f.fail(i, "a boolean")
	}
	return v
}

func (f *fieldReader) fail(i int, want string) {
	if f.err == nil {
		f.err = malformed("field %d %q is not %s", i, f.fields[i], want)
	}
}
