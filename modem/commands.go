package modem

import (
	"context"
	"fmt"
	"time"

	"i4.energy/across/hibergw/lpgan"
)

// do runs cmd and asserts the result type expected for it.
func do[T lpgan.Result](ctx context.Context, m *Modem, cmd lpgan.Command) (T, error) {
	var zero T
	result, err := m.Do(ctx, cmd)
	if result == nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%s: %w: %T", cmd.Kind(), ErrUnexpectedResult, result)
	}
	return typed, err
}

// SetGPSMode enables or disables the GPS receiver and returns the mode the
// modem reports back.
func (m *Modem) SetGPSMode(ctx context.Context, enabled bool) (bool, error) {
	r, err := do[lpgan.GpsMode](ctx, m, lpgan.SetGpsMode{Enabled: enabled})
	return r.Enabled, err
}

// DoGPSFix triggers a GPS fix. An empty hint sends the command without
// arguments.
func (m *Modem) DoGPSFix(ctx context.Context, hint string) error {
	cmd := lpgan.DoGpsFix{}
	if hint != "" {
		cmd.Hint = &hint
	}
	_, err := m.Do(ctx, cmd)
	return err
}

func (m *Modem) FirmwareVersion(ctx context.Context) (string, error) {
	r, err := do[lpgan.FirmwareVersion](ctx, m, lpgan.GetFirmwareVersion{})
	return r.Version, err
}

func (m *Modem) ModemInfo(ctx context.Context) (lpgan.ModemInfo, error) {
	return do[lpgan.ModemInfo](ctx, m, lpgan.GetModemInfo{})
}

// SetModemNumber assigns a modem number of the form "XXXX XXXX".
func (m *Modem) SetModemNumber(ctx context.Context, number string) error {
	_, err := m.Do(ctx, lpgan.SetModemNumber{Number: number})
	return err
}

func (m *Modem) Location(ctx context.Context) (lpgan.Location, error) {
	return do[lpgan.Location](ctx, m, lpgan.GetLocation{})
}

// SetLocation overrides the modem position and returns the location the
// modem now reports.
func (m *Modem) SetLocation(ctx context.Context, latitude, longitude, elevation float64) (lpgan.Location, error) {
	return do[lpgan.Location](ctx, m, lpgan.SetLocation{
		Latitude:  latitude,
		Longitude: longitude,
		Elevation: elevation,
	})
}

func (m *Modem) Datetime(ctx context.Context) (time.Time, error) {
	r, err := do[lpgan.Datetime](ctx, m, lpgan.GetDatetime{})
	if err != nil {
		return time.Time{}, err
	}
	return parseDatetime(r)
}

// SetDatetime sets the modem clock and returns the time the modem reports
// after the change.
func (m *Modem) SetDatetime(ctx context.Context, t time.Time) (time.Time, error) {
	r, err := do[lpgan.Datetime](ctx, m, lpgan.SetDatetime{Time: t})
	if err != nil {
		return time.Time{}, err
	}
	return parseDatetime(r)
}

func (m *Modem) NextAlarm(ctx context.Context) (lpgan.Alarm, error) {
	return do[lpgan.Alarm](ctx, m, lpgan.GetNextAlarm{})
}

// NextPass returns the time left until the next satellite pass.
func (m *Modem) NextPass(ctx context.Context) (time.Duration, error) {
	r, err := do[lpgan.Pass](ctx, m, lpgan.GetNextPass{})
	if err != nil {
		return 0, err
	}
	return time.Duration(r.SecondsLeft) * time.Second, nil
}

// GoToSleep asks the modem to sleep until its next alarm.
//
// While the wakeup pin is high the modem refuses with a warning; the
// request is then repeated up to the configured number of retries, waiting
// the retry interval between attempts. The last warning is returned once
// retries are exhausted. Any other failure is returned immediately.
func (m *Modem) GoToSleep(ctx context.Context) (lpgan.Sleep, error) {
	var lastErr error
	for attempt := 0; attempt <= max(m.config.maxRetries, 0); attempt++ {
		if attempt > 0 {
			if err := m.sleepRetry(ctx); err != nil {
				return lpgan.Sleep{}, fmt.Errorf("sleep retry: %w", err)
			}
		}

		r, err := do[lpgan.Sleep](ctx, m, lpgan.GoToSleep{})
		if err == nil {
			m.logger.Info("modem going to sleep", "alarm_id", r.AlarmID, "seconds_until_alarm", r.SecondsUntilAlarm)
			return r, nil
		}
		if !lpgan.IsWarning(err) {
			return lpgan.Sleep{}, err
		}

		m.logger.Warn("modem refused to sleep", "attempt", attempt+1, "error", err)
		lastErr = err
	}
	return lpgan.Sleep{}, lastErr
}

// TogglePayloadOverDebug switches echoing of the payload on the debug UART.
func (m *Modem) TogglePayloadOverDebug(ctx context.Context, enabled bool) (bool, error) {
	r, err := do[lpgan.PayloadOverDebug](ctx, m, lpgan.TogglePayloadOverDebug{Enabled: enabled})
	return r.Enabled, err
}

// SetPayload announces a payload of n bytes and returns the byte count the
// modem accepted.
func (m *Modem) SetPayload(ctx context.Context, n int) (int64, error) {
	r, err := do[lpgan.Payload](ctx, m, lpgan.SetPayload{Bytes: n})
	return r.Bytes, err
}

func parseDatetime(r lpgan.Datetime) (time.Time, error) {
	t, err := r.Time()
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w: %v", r.Kind(), lpgan.ErrMalformedResponse, err)
	}
	return t, nil
}
