package lpgan

import (
	"bufio"
	"bytes"
	"strings"
)

// LineType classifies a line read from the modem.
type LineType int

const (
	LineNoise       LineType = iota // banners, echoes, blank lines
	LineResponse                    // API(...) responses
	LineUnsupported                 // "Hiber API " lines
)

// Splitter tokenizes the modem output stream into CRLF terminated lines.
// It uses the signature of bufio.SplitFunc so it can be directly used with
// bufio.Scanner.
//
// The atEOF parameter indicates whether any more data will be available.
// When true, any remaining data is returned as the final token.
func Splitter(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.Index(data, []byte(CRLF)); i >= 0 {
		return i + len(CRLF), data[0:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = Splitter

// Classify identifies the nature of a line of modem output.
func Classify(line string) LineType {
	switch {
	case strings.HasPrefix(line, ResponsePrefix):
		return LineResponse
	case strings.HasPrefix(line, LegacyResponsePrefix):
		return LineUnsupported
	default:
		return LineNoise
	}
}
