package modem

import "errors"

var (
	// ErrNoDialer is returned when a Modem is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the modem.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation is attempted on a Modem
	// that has no transport, for example when a Dialer returned none.
	ErrNotInitialized = errors.New("modem not initialized")

	// ErrAlreadyClosed is returned when Close is called on a Modem that has
	// already been closed, or when a command is issued after Close.
	ErrAlreadyClosed = errors.New("modem already closed")

	// ErrLineTooLong is returned when a modem response line exceeds the
	// maximum allowed length.
	//
	// This typically indicates unexpected binary data or a baud rate
	// mismatch.
	ErrLineTooLong = errors.New("response line too long")

	// ErrInvalidBaudRate is returned when a serial line speed is not one the
	// modem supports.
	ErrInvalidBaudRate = errors.New("unsupported baud rate")

	// ErrInvalidPortName is returned when a serial port name is neither a
	// COM port nor an absolute device path.
	ErrInvalidPortName = errors.New("invalid serial port name")

	// ErrUnexpectedResult is returned when the decoded result does not match
	// the command that was sent.
	ErrUnexpectedResult = errors.New("unexpected result type")
)
