package modem

//go:generate go tool mockgen -source=transport.go -destination=mock_transport.go -package=modem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"

	"go.bug.st/serial"
)

// DefaultBaudRate is the factory setting of the Hiber modem UART.
const DefaultBaudRate = 19200

// SupportedBaudRates lists the UART speeds the modem can be configured for.
var SupportedBaudRates = []int{9600, 19200, 38400, 57600, 115200}

// portNamePattern matches Windows COM ports and absolute device paths.
var portNamePattern = regexp.MustCompile(`^(COM[1-9][0-9]*|/\S+)$`)

// Transport represents an established, bidirectional byte stream to a Hiber
// modem.
//
// A Transport is assumed to be already connected and ready for use. Typical
// implementations include serial ports, TCP bridges or in-memory fakes used
// for testing.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport to a Hiber modem.
//
// Dialer abstracts how the modem connection is created and is used during
// modem construction only. Once a Transport is obtained, the Dialer is no
// longer needed.
type Dialer interface {
	// Dial is responsible for creating and returning a connected Transport.
	// It should respect cancellation of the provided context. Dial returns
	// an error if the transport cannot be established.
	Dial(ctx context.Context) (Transport, error)
}

// DialerFunc adapts an ordinary function to the Dialer interface.
type DialerFunc func(ctx context.Context) (Transport, error)

func (f DialerFunc) Dial(ctx context.Context) (Transport, error) {
	return f(ctx)
}

// SerialDialer opens a Hiber modem over a local serial port.
type SerialDialer struct {
	// PortName is the device path, e.g. "/dev/ttyUSB0" or "COM3".
	PortName string
	// Mode overrides the line settings. Nil means DefaultBaudRate, 8N1.
	Mode *serial.Mode
}

func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("hiber: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("hiber: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidatePortName(d.PortName); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		mode = &serial.Mode{
			BaudRate: DefaultBaudRate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}
	}
	if err := ValidateBaudRate(mode.BaudRate); err != nil {
		return nil, err
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("hiber: open serial port %s: %w", d.PortName, err)
	}
	return port, nil
}

// ValidateBaudRate returns ErrInvalidBaudRate unless rate is one of
// SupportedBaudRates.
func ValidateBaudRate(rate int) error {
	if !slices.Contains(SupportedBaudRates, rate) {
		return fmt.Errorf("%w: %d", ErrInvalidBaudRate, rate)
	}
	return nil
}

// ValidatePortName returns ErrInvalidPortName unless name is a Windows COM
// port ("COM3") or an absolute device path ("/dev/ttyUSB0").
func ValidatePortName(name string) error {
	if !portNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidPortName, name)
	}
	return nil
}
