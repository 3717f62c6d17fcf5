package modem_test

import (
	"io"
	"sync"

	gomock "go.uber.org/mock/gomock"
	"i4.energy/across/hibergw/modem"
)

// MockSequenceBuilder scripts a MockTransport as a modem that answers each
// expected command with one response line.
//
// The reader goroutine of a Modem calls Read at any time, so Read is not
// part of the ordered sequence: every scripted Write queues its response,
// and Read blocks until a response is queued or the transport is closed.
type MockSequenceBuilder struct {
	transport *modem.MockTransport
	calls     []any

	pending   chan string
	rest      []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func NewMockSequence(transport *modem.MockTransport) *MockSequenceBuilder {
	b := &MockSequenceBuilder{
		transport: transport,
		calls:     []any{},
		pending:   make(chan string, 16),
		closed:    make(chan struct{}),
	}
	// Only the modem's reader goroutine reads, so rest needs no locking.
	transport.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		if len(b.rest) == 0 {
			select {
			case resp := <-b.pending:
				b.rest = []byte(resp)
			case <-b.closed:
				return 0, io.EOF
			}
		}
		n := copy(p, b.rest)
		b.rest = b.rest[n:]
		return n, nil
	}).AnyTimes()
	return b
}

// Expect scripts cmd to be written and answered with resp.
func (b *MockSequenceBuilder) Expect(cmd, resp string) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Write([]byte(cmd)).DoAndReturn(func(p []byte) (int, error) {
			b.pending <- resp
			return len(p), nil
		}),
	)
	return b
}

// Hangup scripts cmd to be written, after which the modem stops answering
// and reads return io.EOF.
func (b *MockSequenceBuilder) Hangup(cmd string) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Write([]byte(cmd)).DoAndReturn(func(p []byte) (int, error) {
			b.closeOnce.Do(func() { close(b.closed) })
			return len(p), nil
		}),
	)
	return b
}

// WriteError scripts cmd to fail on write with err.
func (b *MockSequenceBuilder) WriteError(cmd string, err error) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Write([]byte(cmd)).Return(0, err),
	)
	return b
}

func (b *MockSequenceBuilder) FirmwareVersion() *MockSequenceBuilder {
	return b.Expect("get_firmware_version\r\n", "API(600: cn-release-v1.0.0-1-gd193bbe4)\r\n")
}

func (b *MockSequenceBuilder) ModemInfo() *MockSequenceBuilder {
	return b.Expect("get_modem_info\r\n", "API(600: GAMMA; 2; 1; 27AA 0DD8; 665456088)\r\n")
}

func (b *MockSequenceBuilder) SleepRefused() *MockSequenceBuilder {
	return b.Expect("go_to_sleep\r\n", "API(603: 36; 3)\r\n")
}

func (b *MockSequenceBuilder) Sleep() *MockSequenceBuilder {
	return b.Expect("go_to_sleep\r\n", "API(602: 36; 3)\r\n")
}

// Close scripts the transport to be closed, which unblocks pending reads.
func (b *MockSequenceBuilder) Close() *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Close().DoAndReturn(func() error {
			b.closeOnce.Do(func() { close(b.closed) })
			return nil
		}),
	)
	return b
}

// CloseWithError is Close returning err.
func (b *MockSequenceBuilder) CloseWithError(err error) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Close().DoAndReturn(func() error {
			b.closeOnce.Do(func() { close(b.closed) })
			return err
		}),
	)
	return b
}

func (b *MockSequenceBuilder) Build() []any {
	return b.calls
}
