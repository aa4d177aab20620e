// Package hw abstracts the pins and serial port the firmware drives. Build
// tags select the concrete provider: machine+uartx on rp2040, periph.io on
// linux, fakes plus stdio elsewhere (and in tests).
package hw

import "context"

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

type GPIOPin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
	Toggle()
	Number() int
}

// UARTPort is the serial link to the host.
type UARTPort interface {
	// TX
	WriteByte(b byte) error
	Write(p []byte) (int, error)

	// RX
	Buffered() int
	Read(p []byte) (int, error)
	Readable() <-chan struct{}
	RecvSomeContext(ctx context.Context, p []byte) (int, error)
}

// PanelPins is the full pin set of the row/column multiplexed RGB panel:
// blank/clock/latch control, five row-address bits, and per-half color data
// lines (the panel is two stacked 32-row halves).
type PanelPins struct {
	BL GPIOPin // blank control
	CK GPIOPin // column clock
	LA GPIOPin // latch

	A [5]GPIOPin // row address bits, A0 = LSB

	R0, R1 GPIOPin // red data, lower/upper half
	G0, G1 GPIOPin // green data, lower/upper half
	B0, B1 GPIOPin // blue data, lower/upper half
}

// Each iterates the panel pins in a fixed order.
func (p *PanelPins) Each(f func(GPIOPin)) {
	f(p.BL)
	f(p.CK)
	f(p.LA)
	for _, a := range p.A {
		f(a)
	}
	f(p.R0)
	f(p.R1)
	f(p.G0)
	f(p.G1)
	f(p.B0)
	f(p.B1)
}

// Pins is everything the board wires up.
type Pins struct {
	Panel   PanelPins
	Trigger GPIOPin // camera shutter line
	Ready   GPIOPin // optional camera-busy input; nil when not wired
}
