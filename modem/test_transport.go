package modem

import (
	"io"
	"sync"
)

// TestTransport is a test helper that simulates a blocking transport using
// channels. Reads block until data is queued, like a real serial port, which
// the reader goroutine of a Modem relies on.
//
// When a responder is installed, every Write is recorded and the responder's
// answer is queued for reading, emulating a modem that answers each command
// with one line.
type TestTransport struct {
	mu        sync.Mutex
	readChan  chan []byte
	closed    bool
	written   []string
	responder func(cmd string) string
}

// NewTestTransport creates a new test transport for testing.
// Exported for use in tests.
func NewTestTransport() *TestTransport {
	return &TestTransport{
		readChan: make(chan []byte, 10),
	}
}

// Respond installs fn to answer each written command. An empty answer
// queues nothing.
func (t *TestTransport) Respond(fn func(cmd string) string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.responder = fn
}

func (t *TestTransport) Write(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.ErrClosedPipe
	}
	t.written = append(t.written, string(p))
	if t.responder != nil {
		if resp := t.responder(string(p)); resp != "" {
			t.readChan <- []byte(resp)
		}
	}
	return len(p), nil
}

func (t *TestTransport) Read(p []byte) (n int, err error) {
	data, ok := <-t.readChan
	if !ok {
		return 0, io.EOF
	}
	return copy(p, data), nil
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.readChan)
	return nil
}

// SendData queues data to be read by the transport.
// This simulates receiving data from the modem.
func (t *TestTransport) SendData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.readChan <- []byte(data)
	}
}

// Written returns the commands written so far.
func (t *TestTransport) Written() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.written...)
}
