package types

// ---- Matrix geometry & colors ----

const (
	MatrixWidth      = 64
	MatrixHeight     = 64
	MatrixHalfHeight = 32 // split-panel addressing: row address is y mod 32

	CenterX = MatrixWidth / 2
	CenterY = MatrixHeight / 2
)

// Color is a 3-bit channel mask driving the panel's R/G/B data lines.
type Color uint8

const (
	ColorOff   Color = 0
	ColorRed   Color = 1 // bit 0
	ColorGreen Color = 2 // bit 1
	ColorBlue  Color = 4 // bit 2
	ColorMax   Color = 7
)

func (c Color) Valid() bool { return c <= ColorMax }

// ---- Patterns ----

type PatternKind uint8

const (
	PatternConcentricRings PatternKind = iota
	PatternCenterOnly
	PatternSpiral
	PatternGrid
)

func (k PatternKind) Valid() bool { return k <= PatternGrid }

func (k PatternKind) String() string {
	switch k {
	case PatternConcentricRings:
		return "rings"
	case PatternCenterOnly:
		return "center"
	case PatternSpiral:
		return "spiral"
	case PatternGrid:
		return "grid"
	default:
		return "unknown"
	}
}

// PatternParams carries every kind's numeric knobs; Kind selects which
// fields are live. The serial protocol reuses the I/M/O opcodes as three
// generic slots, mapped per kind (see SlotSet).
type PatternParams struct {
	Kind PatternKind

	// Shared.
	Stride     int // sampling interval over (x+y); >= 1
	MaskRadius int // circle mask; 0 disables

	// Rings.
	InnerRadius  int
	MiddleRadius int
	OuterRadius  int

	// Spiral.
	SpiralMaxRadius int
	SpiralTurns     int

	// Grid.
	GridPointSize int
	GridOffsetX   int
	GridOffsetY   int
}

// SlotSet assigns value v to the kind-dependent slot n (0..2), preserving
// the original wire protocol's I/M/O overloading.
func (p *PatternParams) SlotSet(n, v int) bool {
	switch p.Kind {
	case PatternConcentricRings:
		switch n {
		case 0:
			p.InnerRadius = v
		case 1:
			p.MiddleRadius = v
		case 2:
			p.OuterRadius = v
		default:
			return false
		}
	case PatternSpiral:
		switch n {
		case 0:
			p.SpiralMaxRadius = v
		case 1:
			p.SpiralTurns = v
		default:
			return false
		}
	case PatternGrid:
		switch n {
		case 0:
			p.GridPointSize = v
		case 1:
			p.GridOffsetX = v
		case 2:
			p.GridOffsetY = v
		default:
			return false
		}
	default:
		// Center-only has no slots.
		return false
	}
	return true
}

// Cell is one matrix coordinate.
type Cell struct {
	X, Y int
}

// ---- Sequencer ----

type RunState uint8

const (
	RunStopped RunState = iota
	RunRunning
	RunPaused
)

func (s RunState) String() string {
	switch s {
	case RunRunning:
		return "running"
	case RunPaused:
		return "paused"
	default:
		return "stopped"
	}
}

// ---- Camera ----

type CameraError uint8

const (
	CameraErrNone CameraError = iota
	CameraErrTimeout
	CameraErrTriggerFailure
	CameraErrNotReady
)

// CameraSettings is host-writable at any time.
type CameraSettings struct {
	Enabled      bool
	PreDelayMs   int
	PulseWidthMs int
	PostDelayMs  int
}

// CameraStatus is device-owned, read-only to the host.
type CameraStatus struct {
	TriggerActive bool
	LastTriggerMs int64
	TriggerCount  int
	Error         CameraError
}

// ---- Status snapshot published after commands and sequence steps ----

type Status struct {
	Running       bool
	Idle          bool
	Progress      float32 // index/length in [0,1]
	CameraEnabled bool
	TriggerActive bool
	CameraError   CameraError
}

// LEDUpdate echoes the currently active pixel whenever it changes.
type LEDUpdate struct {
	X, Y  int
	Color Color
	On    bool
}
