package lpgan

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned by Encode when a command carries a
	// value the modem would reject or that cannot be rendered on the wire.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMalformedResponse is returned when a response line does not follow
	// the API(<code>[: <fields>]) grammar, or when its fields cannot be
	// coerced into the result expected for the command.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrUnknownStatusCode is returned when a response carries a status code
	// that is not in the status registry.
	ErrUnknownStatusCode = errors.New("unknown status code")

	// ErrUnsupportedResponse is returned for lines using the "Hiber API "
	// prefix. They are recognised as modem output but have no defined field
	// grammar.
	ErrUnsupportedResponse = errors.New("unsupported response format")
)

// ProtocolError reports a well-formed response whose status code signals
// that the modem refused or failed the command.
type ProtocolError struct {
	Code StatusCode
	Text string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("modem error %d: %s", e.Code, e.Text)
}

// Warning reports a recoverable outcome. The modem accepted the request but
// did not carry it out; the caller may retry. Interpret returns a Warning
// alongside any result it could still decode.
type Warning struct {
	Code StatusCode
	Text string
}

func (w *Warning) Error() string {
	return fmt.Sprintf("modem warning %d: %s", w.Code, w.Text)
}

// IsWarning reports whether err is, or wraps, a *Warning.
func IsWarning(err error) bool {
	var w *Warning
	return errors.As(err, &w)
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}
