package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBridgeHandle(t *testing.T) {
	m, _ := fakeModem(t, map[string]string{
		"get_next_pass\r\n":          "API(600: 1298)\r\n",
		"set_modem_number(ABCD)\r\n": "API(600)\r\n",
	})
	config, err := LoadConfig(WithDefaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bridge := NewBridge(config, m, slog.New(slog.DiscardHandler))

	assert.Equal(t, "hiber/cmd/result", bridge.ResultTopic())

	tests := []struct {
		name     string
		payload  string
		expected string
	}{
		{
			name:     "command",
			payload:  `{"id":"42","command":"get_next_pass"}`,
			expected: `{"id":"42","command":"get_next_pass","result":{"seconds_left_until_pass":1298}}`,
		},
		{
			name:     "invalid argument",
			payload:  `{"command":"set_modem_number","number":"ABCD"}`,
			expected: `{"command":"set_modem_number","error":"invalid argument: modem number \"ABCD\" must have format 'XXXX XXXX'"}`,
		},
		{
			name:     "bad payload",
			payload:  `not json`,
			expected: `{"command":"","error":"bad payload: invalid character 'o' in literal null (expecting 'u')"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bridge.Handle(context.Background(), []byte(tt.payload))
			assert.JSONEq(t, tt.expected, string(got))
		})
	}

	// Stop before Start is a no-op
	bridge.Stop()
}
