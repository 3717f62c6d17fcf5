package modem_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"i4.energy/across/hibergw/lpgan"
	"i4.energy/across/hibergw/modem"
)

// scripted answers each command with the response registered for its wire
// form. Unknown commands get no answer.
func scripted(responses map[string]string) func(cmd string) string {
	return func(cmd string) string {
		return responses[cmd]
	}
}

func TestModemCommands(t *testing.T) {
	m, transport := newTestModem(t, scripted(map[string]string{
		"set_gps_mode(true)\r\n":                               "API(600: 1)\r\n",
		"do_gps_fix\r\n":                                       "API(600)\r\n",
		"do_gps_fix(\"cold\")\r\n":                             "API(600)\r\n",
		"get_modem_info\r\n":                                   "API(600: GAMMA; 2; 1; 27AA 0DD8; 665456088)\r\n",
		"set_modem_number(27AA 0DD8)\r\n":                      "API(600)\r\n",
		"get_location\r\n":                                     "API(600: 54.333229; 4.212332; -157938633; -2147483648; 0.000000)\r\n",
		"set_location(\"52.000000\",\"4.300000\",\"1.5\")\r\n": "API(600: 52.0; 4.3; 0; 20; 1.5)\r\n",
		"get_datetime\r\n":                                     "API(600: 2019-02-25T16:14:40Z)\r\n",
		"set_datetime(\"2019-02-25T16:13:38Z\")\r\n":           "API(600: 2019-02-25T16:13:38Z) Current date: 2019-02-25T16:13:38Z\r\n",
		"get_next_alarm\r\n":                                   "API(600: 3; 39)\r\n",
		"get_next_pass\r\n":                                    "API(600: 1298)\r\n",
		"toggle_payload_over_debug(true)\r\n":                  "API(600: 1)\r\n",
		"set_payload(\"140\")\r\n":                             "API(600: 140)\r\n",
		"go_to_sleep\r\n":                                      "API(602: 36; 3)\r\n",
	}))
	ctx := context.Background()

	t.Run("firmware from init", func(t *testing.T) {
		assert.Equal(t, "cn-release-v1.0.0-1-gd193bbe4", m.Firmware())
		version, err := m.FirmwareVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, m.Firmware(), version)
	})

	t.Run("set gps mode", func(t *testing.T) {
		enabled, err := m.SetGPSMode(ctx, true)
		require.NoError(t, err)
		assert.True(t, enabled)
	})

	t.Run("gps fix", func(t *testing.T) {
		require.NoError(t, m.DoGPSFix(ctx, ""))
		require.NoError(t, m.DoGPSFix(ctx, "cold"))
	})

	t.Run("modem info", func(t *testing.T) {
		info, err := m.ModemInfo(ctx)
		require.NoError(t, err)
		assert.Equal(t, lpgan.ModemInfo{
			HWTypeStr:  "GAMMA",
			HWTypeInt:  2,
			FWVersion:  "1",
			ModemNoStr: "27AA 0DD8",
			ModemNoInt: 665456088,
		}, info)
	})

	t.Run("set modem number", func(t *testing.T) {
		require.NoError(t, m.SetModemNumber(ctx, "27AA 0DD8"))
	})

	t.Run("location", func(t *testing.T) {
		loc, err := m.Location(ctx)
		require.NoError(t, err)
		assert.InDelta(t, 54.333229, loc.Latitude, 1e-9)
		assert.InDelta(t, 4.212332, loc.Longitude, 1e-9)
		assert.Equal(t, int64(-157938633), loc.SecondsSinceLastFix)
		assert.Equal(t, int64(-2147483648), loc.SecondsUntilNextFix)
		assert.Zero(t, loc.Altitude)
	})

	t.Run("set location", func(t *testing.T) {
		loc, err := m.SetLocation(ctx, 52, 4.3, 1.5)
		require.NoError(t, err)
		assert.Equal(t, lpgan.KindSetLocation, loc.Kind())
		assert.InDelta(t, 52.0, loc.Latitude, 1e-9)
		assert.Equal(t, int64(20), loc.SecondsUntilNextFix)
		assert.InDelta(t, 1.5, loc.Altitude, 1e-9)
	})

	t.Run("datetime", func(t *testing.T) {
		now, err := m.Datetime(ctx)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2019, 2, 25, 16, 14, 40, 0, time.UTC), now)
	})

	t.Run("set datetime", func(t *testing.T) {
		amsterdam := time.FixedZone("CET", 3600)
		now, err := m.SetDatetime(ctx, time.Date(2019, 2, 25, 17, 13, 38, 0, amsterdam))
		require.NoError(t, err)
		assert.Equal(t, time.Date(2019, 2, 25, 16, 13, 38, 0, time.UTC), now)
	})

	t.Run("next alarm", func(t *testing.T) {
		alarm, err := m.NextAlarm(ctx)
		require.NoError(t, err)
		assert.Equal(t, lpgan.Alarm{ID: 3, SecondsLeft: 39}, alarm)
	})

	t.Run("next pass", func(t *testing.T) {
		left, err := m.NextPass(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1298*time.Second, left)
	})

	t.Run("payload over debug", func(t *testing.T) {
		enabled, err := m.TogglePayloadOverDebug(ctx, true)
		require.NoError(t, err)
		assert.True(t, enabled)
	})

	t.Run("set payload", func(t *testing.T) {
		n, err := m.SetPayload(ctx, 140)
		require.NoError(t, err)
		assert.Equal(t, int64(140), n)
	})

	t.Run("go to sleep", func(t *testing.T) {
		sleep, err := m.GoToSleep(ctx)
		require.NoError(t, err)
		assert.Equal(t, lpgan.Sleep{SecondsUntilAlarm: 36, AlarmID: 3}, sleep)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		before := len(transport.Written())

		_, err := m.SetLocation(ctx, 91, 0, 0)
		assert.ErrorIs(t, err, lpgan.ErrInvalidArgument)
		_, err = m.SetPayload(ctx, -1)
		assert.ErrorIs(t, err, lpgan.ErrInvalidArgument)
		_, err = m.SetDatetime(ctx, time.Time{})
		assert.ErrorIs(t, err, lpgan.ErrInvalidArgument)
		assert.ErrorIs(t, m.DoGPSFix(ctx, "a\"b"), lpgan.ErrInvalidArgument)

		assert.Len(t, transport.Written(), before)
	})
}

func TestModemDatetimeMalformed(t *testing.T) {
	m, _ := newTestModem(t, scripted(map[string]string{
		"get_datetime\r\n": "API(600: yesterday)\r\n",
	}))

	_, err := m.Datetime(context.Background())
	assert.ErrorIs(t, err, lpgan.ErrMalformedResponse)
}

func TestModemGoToSleep(t *testing.T) {
	retry := func(n int) func(*modem.ConfigBuilder) {
		return func(b *modem.ConfigBuilder) {
			b.WithMaxRetries(n).WithRetryInterval(time.Millisecond)
		}
	}

	// refuseFor answers go_to_sleep with a warning for the first n attempts
	// and starts sleeping afterwards.
	refuseFor := func(n int32, attempts *atomic.Int32) func(cmd string) string {
		return func(cmd string) string {
			if cmd != "go_to_sleep\r\n" {
				return ""
			}
			if attempts.Add(1) <= n {
				return "API(603: 36; 3)\r\n"
			}
			return "API(602: 36; 3)\r\n"
		}
	}

	t.Run("retries while wakeup pin is high", func(t *testing.T) {
		var attempts atomic.Int32
		m, _ := newTestModem(t, refuseFor(2, &attempts), retry(3))

		sleep, err := m.GoToSleep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, lpgan.Sleep{SecondsUntilAlarm: 36, AlarmID: 3}, sleep)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("returns warning when retries are exhausted", func(t *testing.T) {
		var attempts atomic.Int32
		m, _ := newTestModem(t, refuseFor(10, &attempts), retry(2))

		_, err := m.GoToSleep(context.Background())
		var warning *lpgan.Warning
		require.ErrorAs(t, err, &warning)
		assert.Equal(t, lpgan.StatusWakeupPinHigh, warning.Code)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("zero retries select the default", func(t *testing.T) {
		var attempts atomic.Int32
		m, _ := newTestModem(t, refuseFor(10, &attempts), retry(0))

		_, err := m.GoToSleep(context.Background())
		assert.True(t, lpgan.IsWarning(err))
		assert.Equal(t, int32(4), attempts.Load())
	})

	t.Run("negative retries send a single request", func(t *testing.T) {
		var attempts atomic.Int32
		m, _ := newTestModem(t, refuseFor(10, &attempts), retry(-1))

		_, err := m.GoToSleep(context.Background())
		assert.True(t, lpgan.IsWarning(err))
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		var attempts atomic.Int32
		m, _ := newTestModem(t, func(cmd string) string {
			attempts.Add(1)
			return "API(635)\r\n"
		}, retry(3))

		_, err := m.GoToSleep(context.Background())
		var perr *lpgan.ProtocolError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, lpgan.StatusSleepTooShort, perr.Code)
		assert.False(t, lpgan.IsWarning(err))
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("context ends while waiting to retry", func(t *testing.T) {
		var attempts atomic.Int32
		m, _ := newTestModem(t, refuseFor(10, &attempts), func(b *modem.ConfigBuilder) {
			b.WithMaxRetries(5).WithRetryInterval(time.Hour)
		})

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := m.GoToSleep(ctx)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
		assert.Equal(t, int32(1), attempts.Load())
	})
}
