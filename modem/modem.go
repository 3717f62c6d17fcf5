package modem

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"i4.energy/across/hibergw/lpgan"
)

// maxLineLength caps a single response line read from the modem.
const maxLineLength = 4096

// Modem is a session with a Hiber modem speaking the LPGAN API.
//
// A single reader goroutine owns all reads from the transport and hands
// response lines to the command currently in flight. Commands are
// serialised, so every command is paired with exactly one response line.
// A command that times out still owes its line; the next command discards
// it before writing. Modem is safe for concurrent use.
type Modem struct {
	// transport provides the physical connection to the modem
	transport Transport
	// config contains the modem configuration settings
	config Config
	logger *slog.Logger

	// mu serialises command/response exchanges
	mu sync.Mutex
	// pending counts response lines still owed to commands that timed out.
	// Guarded by mu.
	pending int
	// closed indicates if the modem has been shut down
	closed atomic.Bool

	// lines carries response lines from the reader goroutine. It is closed
	// when the reader stops; readErr is set before that happens.
	lines   chan string
	readErr error

	// done is closed by Close to stop the reader goroutine
	done chan struct{}
	// readerDone is closed once the reader goroutine has returned
	readerDone chan struct{}

	firmware string
}

// New creates a new Modem with the given configuration. It establishes the
// transport connection, starts the reader goroutine and checks that the
// modem answers by asking for its firmware version.
//
// Returns an error if the transport connection or the initial exchange
// fails. The transport is closed in that case.
func New(ctx context.Context, config Config) (*Modem, error) {
	if config.dialer == nil {
		return nil, ErrNoDialer
	}
	config.setDefaults()

	transport, err := config.dialer.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("dial modem: %w", err)
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}

	m := &Modem{
		transport:  transport,
		config:     config,
		logger:     config.logger,
		lines:      make(chan string, 16),
		done:       make(chan struct{}),
		readerDone: make(chan struct{}),
	}
	go m.readLoop()

	initCtx := ctx
	if config.initTimeout > 0 {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, config.initTimeout)
		defer cancel()
	}

	if err := m.init(initCtx); err != nil {
		m.Close()
		return nil, fmt.Errorf("initialize modem: %w", err)
	}

	return m, nil
}

// init performs the initial exchange with the modem. It must complete
// successfully before the modem is handed to the caller.
func (m *Modem) init(ctx context.Context) error {
	version, err := m.FirmwareVersion(ctx)
	if err != nil {
		return fmt.Errorf("modem not responding: %w", err)
	}
	m.firmware = version
	m.logger.Info("modem ready", "firmware_version", version)
	return nil
}

// Firmware returns the firmware version reported during initialization.
func (m *Modem) Firmware() string {
	return m.firmware
}

// Close shuts down the modem and releases all resources. It stops the
// reader goroutine and closes the transport connection. After calling
// Close, the modem cannot be reused.
func (m *Modem) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return ErrAlreadyClosed
	}

	close(m.done)
	err := m.transport.Close()
	<-m.readerDone
	return err
}

// Do sends cmd to the modem and interprets the single response line.
//
// Errors from lpgan are returned wrapped, so errors.Is and errors.As work
// for lpgan.ErrInvalidArgument, *lpgan.ProtocolError, *lpgan.Warning and the
// other decode failures. A *lpgan.Warning may accompany a non-nil Result.
func (m *Modem) Do(ctx context.Context, cmd lpgan.Command) (lpgan.Result, error) {
	wire, err := lpgan.Encode(cmd)
	if err != nil {
		return nil, err
	}

	line, err := m.exec(ctx, wire)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd.Kind(), err)
	}

	result, err := lpgan.Interpret(cmd.Kind(), line)
	if err != nil {
		m.logger.Debug("command not successful", "command", cmd.Kind().String(), "response", line, "error", err)
		return result, fmt.Errorf("%s: %w", cmd.Kind(), err)
	}
	return result, nil
}

// readLoop is the only goroutine that reads from the transport. Noise such
// as boot banners and blank lines is dropped; everything that looks like a
// response is forwarded to lines.
func (m *Modem) readLoop() {
	defer close(m.readerDone)
	defer close(m.lines)

	scanner := bufio.NewScanner(m.transport)
	scanner.Buffer(make([]byte, 0, 256), maxLineLength)
	scanner.Split(lpgan.Splitter)

	for scanner.Scan() {
		line := scanner.Text()
		if lpgan.Classify(line) == lpgan.LineNoise {
			if line != "" {
				m.logger.Debug("ignoring modem output", "line", line)
			}
			continue
		}

		m.logger.Debug("rx", "line", line)
		select {
		case m.lines <- line:
		case <-m.done:
			return
		}
	}

	err := scanner.Err()
	if errors.Is(err, bufio.ErrTooLong) {
		err = ErrLineTooLong
	}
	m.readErr = err
}

// exec writes a wire command and waits for the next response line.
func (m *Modem) exec(ctx context.Context, wire string) (string, error) {
	if m.closed.Load() {
		return "", ErrAlreadyClosed
	}
	if m.transport == nil {
		return "", ErrNotInitialized
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.awaitPending(ctx); err != nil {
		return "", err
	}
	m.drain()

	// The earlier of the caller's deadline and the command timeout wins
	if m.config.commandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.commandTimeout)
		defer cancel()
	}

	cmd := strings.TrimSpace(wire)
	m.logger.Debug("tx", "command", cmd)
	if _, err := m.transport.Write([]byte(wire)); err != nil {
		return "", fmt.Errorf("write command %q: %w", cmd, err)
	}

	select {
	case line, ok := <-m.lines:
		if !ok {
			if m.readErr != nil {
				return "", fmt.Errorf("read error: %w", m.readErr)
			}
			return "", io.EOF
		}
		return line, nil
	case <-m.done:
		return "", ErrAlreadyClosed
	case <-ctx.Done():
		m.pending++
		return "", fmt.Errorf("command timeout: %w", ctx.Err())
	}
}

// awaitPending discards the late responses of commands that timed out. It
// waits at most one command timeout for them; replies that have not shown
// up by then are treated as lost.
func (m *Modem) awaitPending(ctx context.Context) error {
	if m.pending == 0 {
		return nil
	}

	timer := time.NewTimer(m.config.commandTimeout)
	defer timer.Stop()
	for m.pending > 0 {
		select {
		case line, ok := <-m.lines:
			if !ok {
				m.pending = 0
				return nil
			}
			m.pending--
			m.logger.Warn("dropping late modem response", "line", line)
		case <-timer.C:
			m.logger.Warn("late modem responses never arrived", "missing", m.pending)
			m.pending = 0
		case <-m.done:
			return ErrAlreadyClosed
		case <-ctx.Done():
			return fmt.Errorf("command timeout: %w", ctx.Err())
		}
	}
	return nil
}

// drain discards response lines nobody waited for, such as a late answer
// to a command that already timed out.
func (m *Modem) drain() {
	for {
		select {
		case line, ok := <-m.lines:
			if !ok {
				return
			}
			m.logger.Warn("dropping stale modem response", "line", line)
		default:
			return
		}
	}
}

// sleepRetry waits for the retry interval or until ctx is done.
func (m *Modem) sleepRetry(ctx context.Context) error {
	timer := time.NewTimer(m.config.retryInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.done:
		return ErrAlreadyClosed
	case <-timer.C:
		return nil
	}
}
