package lpgan

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Response is a decoded response line: the status code and the raw,
// uncoerced field tokens in the order the modem sent them.
type Response struct {
	Status StatusCode
	Fields []string
}

// Decode parses a single response line of the form
//
//	API(<code>[: <field>[; <field>...]])[<trailing text>]
//
// Anything after the first closing parenthesis is discarded. Field tokens
// have leading whitespace removed but keep any trailing whitespace.
func Decode(line string) (Response, error) {
	if !strings.HasPrefix(line, ResponsePrefix) {
		if strings.HasPrefix(line, LegacyResponsePrefix) {
			return Response{}, fmt.Errorf("%w: %q", ErrUnsupportedResponse, line)
		}
		return Response{}, malformed("missing %q prefix in %q", ResponsePrefix, line)
	}

	end := strings.IndexByte(line, ')')
	if end < 0 {
		return Response{}, malformed("missing closing parenthesis in %q", line)
	}
	body := line[:end]

	start := strings.Index(body, ResponseOpen)
	if start < 0 {
		return Response{}, malformed("missing %q in %q", ResponseOpen, line)
	}
	body = strings.Trim(strings.TrimSpace(body[start+len(ResponseOpen):]), ")")

	statusPart, fieldPart, hasFields := strings.Cut(body, ":")

	if !isStatusCode(statusPart) {
		return Response{}, malformed("status code %q is not three digits", statusPart)
	}
	n, _ := strconv.Atoi(statusPart)
	status := StatusCode(n)
	if !status.Known() {
		return Response{}, fmt.Errorf("%w: %d", ErrUnknownStatusCode, n)
	}

	fields := []string{}
	if hasFields {
		for _, tok := range strings.Split(fieldPart, ";") {
			fields = append(fields, strings.TrimLeftFunc(tok, unicode.IsSpace))
		}
	}

	return Response{Status: status, Fields: fields}, nil
}

func isStatusCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
