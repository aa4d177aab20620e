package camtrig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledmatrix-go/errcode"
	"ledmatrix-go/hw"
	"ledmatrix-go/types"
)

func testSettings() types.CameraSettings {
	return types.CameraSettings{
		Enabled:      true,
		PreDelayMs:   400,
		PulseWidthMs: 100,
		PostDelayMs:  1500,
	}
}

func newTestDriver(t *testing.T, s types.CameraSettings) (*Driver, *hw.FakePin, *[]time.Duration) {
	t.Helper()
	pin := hw.NewFakePin(16)
	d := New(pin, nil, s)
	require.NoError(t, d.Begin())

	var sleeps []time.Duration
	d.SetSleeper(func(dur time.Duration) { sleeps = append(sleeps, dur) })
	return d, pin, &sleeps
}

func TestFireDisabledIsNoOp(t *testing.T) {
	s := testSettings()
	s.Enabled = false
	d, pin, sleeps := newTestDriver(t, s)
	pin.ResetCounters()

	require.NoError(t, d.Fire())

	assert.Zero(t, pin.Writes, "disabled fire toggled the pin")
	assert.Empty(t, *sleeps, "disabled fire slept")
	assert.Zero(t, d.Status().TriggerCount)
}

func TestFireBracket(t *testing.T) {
	d, pin, sleeps := newTestDriver(t, testSettings())
	pin.ResetCounters()

	require.NoError(t, d.Fire())

	// pre, pulse, post in order.
	require.Len(t, *sleeps, 3)
	assert.Equal(t, 400*time.Millisecond, (*sleeps)[0])
	assert.Equal(t, 100*time.Millisecond, (*sleeps)[1])
	assert.Equal(t, 1500*time.Millisecond, (*sleeps)[2])

	// High then low.
	assert.Equal(t, 2, pin.Writes)
	assert.False(t, pin.Get())

	st := d.Status()
	assert.Equal(t, 1, st.TriggerCount)
	assert.False(t, st.TriggerActive)
	assert.Equal(t, types.CameraErrNone, st.Error)
	assert.NotZero(t, st.LastTriggerMs)
}

func TestFireZeroDelaysSkipSleeps(t *testing.T) {
	s := testSettings()
	s.PreDelayMs = 0
	s.PostDelayMs = 0
	d, _, sleeps := newTestDriver(t, s)

	require.NoError(t, d.Fire())
	require.Len(t, *sleeps, 1, "only the pulse should sleep")
}

func TestConfigureClamps(t *testing.T) {
	d, _, _ := newTestDriver(t, types.CameraSettings{
		Enabled:      true,
		PreDelayMs:   -10,
		PulseWidthMs: 5000,
		PostDelayMs:  99999,
	})
	got := d.Settings()
	assert.Equal(t, 0, got.PreDelayMs)
	assert.Equal(t, 1000, got.PulseWidthMs)
	assert.Equal(t, 10000, got.PostDelayMs)
}

func TestTestPulse(t *testing.T) {
	d, pin, sleeps := newTestDriver(t, testSettings())
	pin.ResetCounters()

	require.NoError(t, d.TestPulse(250))

	require.Len(t, *sleeps, 1, "test pulse must skip the pre/post bracket")
	assert.Equal(t, 250*time.Millisecond, (*sleeps)[0])
	assert.Equal(t, 2, pin.Writes)
	assert.Equal(t, 1, d.Status().TriggerCount)
}

func TestTestPulseDefaultWidth(t *testing.T) {
	d, _, sleeps := newTestDriver(t, testSettings())
	require.NoError(t, d.TestPulse(0))
	require.Len(t, *sleeps, 1)
	assert.Equal(t, 100*time.Millisecond, (*sleeps)[0])
}

// stuckPin never reads back the driven level.
type stuckPin struct{ hw.FakePin }

func (p *stuckPin) Get() bool { return false }

func TestReadbackFailureAfterThree(t *testing.T) {
	pin := &stuckPin{}
	d := New(pin, nil, testSettings())
	require.NoError(t, d.Begin())
	d.SetSleeper(func(time.Duration) {})

	assert.NoError(t, d.Fire())
	assert.NoError(t, d.Fire())
	err := d.Fire()
	require.Error(t, err)
	assert.Equal(t, errcode.TriggerFailure, errcode.Of(err))
	assert.Equal(t, types.CameraErrTriggerFailure, d.Status().Error)

	// Advisory: the pulses still completed.
	assert.Equal(t, 3, d.Status().TriggerCount)
}

func TestReadbackRecoveryResetsCount(t *testing.T) {
	d, _, _ := newTestDriver(t, testSettings())

	// Healthy pin: mismatch counter must stay at zero over many fires.
	for i := 0; i < 5; i++ {
		require.NoError(t, d.Fire())
	}
	assert.Equal(t, 0, d.mismatches)
}
