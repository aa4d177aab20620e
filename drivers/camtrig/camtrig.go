// Package camtrig pulses the camera shutter line with configurable pre/post
// delays. Fire blocks for the full bracket; the caller sequences around it.
package camtrig

import (
	"time"

	"ledmatrix-go/errcode"
	"ledmatrix-go/hw"
	"ledmatrix-go/types"
	"ledmatrix-go/x/mathx"
	"ledmatrix-go/x/timex"
)

// Settings limits (milliseconds).
const (
	minPulse = 1
	maxPulse = 1000
	maxPre   = 5000
	maxPost  = 10000
)

// readbackLimit: consecutive assert/readback mismatches before the advisory
// trigger_failure code is raised.
const readbackLimit = 3

// readyTimeout bounds the optional camera-busy wait.
const readyTimeout = 5 * time.Second

type Driver struct {
	pin   hw.GPIOPin
	ready hw.GPIOPin // nil when the busy line is not wired

	settings types.CameraSettings
	status   types.CameraStatus

	mismatches int

	// sleep is injectable so tests do not wall-clock the delay bracket.
	sleep func(time.Duration)
}

func New(pin, ready hw.GPIOPin, s types.CameraSettings) *Driver {
	d := &Driver{pin: pin, ready: ready, sleep: time.Sleep}
	d.Configure(s)
	return d
}

func (d *Driver) Begin() error {
	if err := d.pin.ConfigureOutput(false); err != nil {
		return err
	}
	if d.ready != nil {
		if err := d.ready.ConfigureInput(hw.PullUp); err != nil {
			return err
		}
	}
	return nil
}

// SetSleeper swaps the delay function. Tests only.
func (d *Driver) SetSleeper(f func(time.Duration)) { d.sleep = f }

// Configure applies host-supplied settings, clamped to the line's limits.
func (d *Driver) Configure(s types.CameraSettings) {
	s.PulseWidthMs = mathx.Clamp(s.PulseWidthMs, minPulse, maxPulse)
	s.PreDelayMs = mathx.Clamp(s.PreDelayMs, 0, maxPre)
	s.PostDelayMs = mathx.Clamp(s.PostDelayMs, 0, maxPost)
	d.settings = s
}

func (d *Driver) Settings() types.CameraSettings { return d.settings }
func (d *Driver) Status() types.CameraStatus     { return d.status }
func (d *Driver) Enabled() bool                  { return d.settings.Enabled }

// Fire runs one pre-delay / pulse / post-delay bracket. Disabled triggering
// is a successful no-op with zero pin activity. Readback and ready-wait
// problems surface as advisory error codes; the bracket still completes.
func (d *Driver) Fire() error {
	return d.fire(d.settings.PulseWidthMs, true)
}

// TestPulse sends a one-off pulse without the pre/post bracket, as driven by
// the host's trigger-test command. width <= 0 selects the configured width.
func (d *Driver) TestPulse(widthMs int) error {
	if widthMs <= 0 {
		widthMs = d.settings.PulseWidthMs
	}
	widthMs = mathx.Clamp(widthMs, minPulse, maxPulse)

	d.status.Error = types.CameraErrNone
	if !d.settings.Enabled {
		return nil
	}
	d.status.TriggerActive = true
	err := d.pulse(widthMs)
	d.status.TriggerActive = false
	return err
}

func (d *Driver) fire(widthMs int, bracket bool) error {
	d.status.Error = types.CameraErrNone
	if !d.settings.Enabled {
		return nil
	}

	d.status.TriggerActive = true
	defer func() { d.status.TriggerActive = false }()

	if bracket && d.settings.PreDelayMs > 0 {
		d.sleep(time.Duration(d.settings.PreDelayMs) * time.Millisecond)
	}

	err := d.pulse(widthMs)

	if d.ready != nil {
		if werr := d.waitReady(); werr != nil && err == nil {
			err = werr
		}
	}

	if bracket && d.settings.PostDelayMs > 0 {
		d.sleep(time.Duration(d.settings.PostDelayMs) * time.Millisecond)
	}
	return err
}

func (d *Driver) pulse(widthMs int) error {
	d.pin.Set(true)

	// Readback check: the line should follow the drive. Mismatches are
	// advisory and only reported after a few in a row.
	var err error
	if d.pin.Get() {
		d.mismatches = 0
	} else {
		d.mismatches++
		if d.mismatches >= readbackLimit {
			d.status.Error = types.CameraErrTriggerFailure
			err = errcode.TriggerFailure
		}
	}

	d.sleep(time.Duration(widthMs) * time.Millisecond)
	d.pin.Set(false)

	d.status.LastTriggerMs = int64(timex.NowMs())
	d.status.TriggerCount++
	return err
}

// waitReady polls the camera-busy line until it drops or the wait times out.
func (d *Driver) waitReady() error {
	deadline := timex.NowMs()
	for d.ready.Get() {
		d.sleep(10 * time.Millisecond)
		if timex.Exceeded(timex.NowMs(), deadline, readyTimeout) {
			d.status.Error = types.CameraErrTimeout
			return errcode.Timeout
		}
	}
	return nil
}
