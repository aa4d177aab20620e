package types

import "time"

// Config gathers the device-wide timing and pattern defaults. The values
// mirror the panel's operating manual; everything the host can tune at
// runtime goes through the serial protocol instead.
type Config struct {
	// Display refresh.
	RefreshPeriod time.Duration // periodic redraw tick (~100 Hz)

	// Sequencing.
	PreFrameDelay  time.Duration // auto-exposure settle before each trigger
	PostFrameDelay time.Duration // dwell after each trigger
	Cycles         int           // full sequence repetitions; 0 loops forever
	SelfRunOnBoot  bool          // run one full sequence at power-up, then idle

	// Idle supervision.
	IdleTimeout       time.Duration
	HeartbeatInterval time.Duration
	HeartbeatDuration time.Duration

	// Camera.
	Camera CameraSettings

	// Illumination.
	SequenceColor Color
	Pattern       PatternParams
}

// DefaultConfig returns the power-up configuration.
func DefaultConfig() Config {
	return Config{
		RefreshPeriod:  10 * time.Millisecond,
		PreFrameDelay:  400 * time.Millisecond,
		PostFrameDelay: 1500 * time.Millisecond,
		Cycles:         1,
		SelfRunOnBoot:  true,

		IdleTimeout:       30 * time.Minute,
		HeartbeatInterval: 60 * time.Second,
		HeartbeatDuration: 500 * time.Millisecond,

		Camera: CameraSettings{
			Enabled:      true,
			PreDelayMs:   400,
			PulseWidthMs: 100,
			PostDelayMs:  1500,
		},

		SequenceColor: ColorGreen,
		Pattern:       DefaultPattern(),
	}
}

// DefaultPattern is the concentric-rings pattern the device generates on
// boot: radii 16/24/31 with a stride of 2 (4 mm target spacing at 2 mm
// LED pitch).
func DefaultPattern() PatternParams {
	return PatternParams{
		Kind:         PatternConcentricRings,
		Stride:       2,
		InnerRadius:  16,
		MiddleRadius: 24,
		OuterRadius:  31,

		SpiralMaxRadius: 31,
		SpiralTurns:     3,

		GridPointSize: 1,
	}
}
