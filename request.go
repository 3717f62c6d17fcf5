package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"i4.energy/across/hibergw/lpgan"
	"i4.energy/across/hibergw/modem"
)

// CommandRequest is the JSON form of a modem command, accepted on
// POST /commands and on the MQTT command topic.
//
// Command holds the wire name (e.g. "set_gps_mode"); the remaining fields
// carry the arguments that command needs.
type CommandRequest struct {
	// ID is echoed in the reply so callers can correlate MQTT responses
	ID      string `json:"id,omitempty"`
	Command string `json:"command"`

	Enabled   *bool      `json:"enabled,omitempty"`
	Hint      *string    `json:"hint,omitempty"`
	Number    string     `json:"number,omitempty"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	Elevation *float64   `json:"elevation,omitempty"`
	Datetime  *time.Time `json:"datetime,omitempty"`
	Bytes     *int       `json:"bytes,omitempty"`
}

// CommandReply reports the outcome of a CommandRequest.
type CommandReply struct {
	ID      string       `json:"id,omitempty"`
	Command string       `json:"command"`
	Result  lpgan.Result `json:"result,omitempty"`
	// Warning is set when the modem answered with a recoverable status
	Warning bool   `json:"warning,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Build converts the request into the lpgan command it names.
func (r CommandRequest) Build() (lpgan.Command, error) {
	kind, ok := lpgan.ParseKind(r.Command)
	if !ok {
		return nil, fmt.Errorf("%w: unknown command %q", lpgan.ErrInvalidArgument, r.Command)
	}

	missing := func(field string) error {
		return fmt.Errorf("%w: %s requires %q", lpgan.ErrInvalidArgument, kind, field)
	}

	switch kind {
	case lpgan.KindSetGpsMode:
		if r.Enabled == nil {
			return nil, missing("enabled")
		}
		return lpgan.SetGpsMode{Enabled: *r.Enabled}, nil
	case lpgan.KindDoGpsFix:
		return lpgan.DoGpsFix{Hint: r.Hint}, nil
	case lpgan.KindGetFirmwareVersion:
		return lpgan.GetFirmwareVersion{}, nil
	case lpgan.KindGetModemInfo:
		return lpgan.GetModemInfo{}, nil
	case lpgan.KindSetModemNumber:
		if r.Number == "" {
			return nil, missing("number")
		}
		return lpgan.SetModemNumber{Number: r.Number}, nil
	case lpgan.KindGetLocation:
		return lpgan.GetLocation{}, nil
	case lpgan.KindSetLocation:
		switch {
		case r.Latitude == nil:
			return nil, missing("latitude")
		case r.Longitude == nil:
			return nil, missing("longitude")
		case r.Elevation == nil:
			return nil, missing("elevation")
		}
		return lpgan.SetLocation{
			Latitude:  *r.Latitude,
			Longitude: *r.Longitude,
			Elevation: *r.Elevation,
		}, nil
	case lpgan.KindGetDatetime:
		return lpgan.GetDatetime{}, nil
	case lpgan.KindSetDatetime:
		if r.Datetime == nil {
			return nil, missing("datetime")
		}
		return lpgan.SetDatetime{Time: *r.Datetime}, nil
	case lpgan.KindGetNextAlarm:
		return lpgan.GetNextAlarm{}, nil
	case lpgan.KindGetNextPass:
		return lpgan.GetNextPass{}, nil
	case lpgan.KindGoToSleep:
		return lpgan.GoToSleep{}, nil
	case lpgan.KindTogglePayloadOverDebug:
		if r.Enabled == nil {
			return nil, missing("enabled")
		}
		return lpgan.TogglePayloadOverDebug{Enabled: *r.Enabled}, nil
	case lpgan.KindSetPayload:
		if r.Bytes == nil {
			return nil, missing("bytes")
		}
		return lpgan.SetPayload{Bytes: *r.Bytes}, nil
	}
	return nil, fmt.Errorf("%w: unsupported command %q", lpgan.ErrInvalidArgument, r.Command)
}

// Execute runs req on m. The reply is filled in for every outcome; the
// returned error classifies failures for the caller.
func Execute(ctx context.Context, m *modem.Modem, req CommandRequest) (CommandReply, error) {
	reply := CommandReply{ID: req.ID, Command: req.Command}

	cmd, err := req.Build()
	if err != nil {
		reply.Error = err.Error()
		return reply, err
	}

	var result lpgan.Result
	if cmd.Kind() == lpgan.KindGoToSleep {
		var sleep lpgan.Sleep
		sleep, err = m.GoToSleep(ctx)
		if err == nil {
			result = sleep
		}
	} else {
		result, err = m.Do(ctx, cmd)
	}

	reply.Result = result
	if err != nil {
		reply.Error = err.Error()
		reply.Warning = lpgan.IsWarning(err)
	}
	return reply, err
}

// httpStatus maps a command failure to the HTTP status reported for it.
func httpStatus(err error) int {
	var perr *lpgan.ProtocolError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, lpgan.ErrInvalidArgument):
		return http.StatusBadRequest
	case lpgan.IsWarning(err):
		return http.StatusConflict
	case errors.As(err, &perr),
		errors.Is(err, lpgan.ErrMalformedResponse),
		errors.Is(err, lpgan.ErrUnknownStatusCode),
		errors.Is(err, lpgan.ErrUnsupportedResponse),
		errors.Is(err, modem.ErrUnexpectedResult):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
