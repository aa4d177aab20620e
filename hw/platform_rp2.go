//go:build rp2040

package hw

import (
	"context"
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// Pin map for the panel carrier board.
const (
	pinBL = 2
	pinCK = 3
	pinLA = 4
	pinA0 = 5
	pinA1 = 6
	pinA2 = 7
	pinA3 = 8
	pinA4 = 9

	pinR0 = 10
	pinR1 = 11
	pinG0 = 12
	pinG1 = 13
	pinB0 = 14
	pinB1 = 15

	pinTrigger = 16

	uartTX = 0
	uartRX = 1
	baud   = 9600
)

type rp2GPIO struct {
	p machine.Pin
	n int
}

func (r *rp2GPIO) Number() int { return r.n }

func (r *rp2GPIO) ConfigureInput(pull Pull) error {
	var mode machine.PinMode
	switch pull {
	case PullUp:
		mode = machine.PinInputPullup
	case PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2GPIO) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r *rp2GPIO) Set(b bool) { r.p.Set(b) }
func (r *rp2GPIO) Get() bool  { return r.p.Get() }
func (r *rp2GPIO) Toggle() {
	if r.p.Get() {
		r.p.Low()
	} else {
		r.p.High()
	}
}

func gp(n int) GPIOPin { return &rp2GPIO{p: machine.Pin(n), n: n} }

// DefaultPins wires the carrier board map.
func DefaultPins() Pins {
	return Pins{
		Panel: PanelPins{
			BL: gp(pinBL), CK: gp(pinCK), LA: gp(pinLA),
			A:  [5]GPIOPin{gp(pinA0), gp(pinA1), gp(pinA2), gp(pinA3), gp(pinA4)},
			R0: gp(pinR0), R1: gp(pinR1),
			G0: gp(pinG0), G1: gp(pinG1),
			B0: gp(pinB0), B1: gp(pinB1),
		},
		Trigger: gp(pinTrigger),
	}
}

// rp2SerialPort adapts uartx to UARTPort.
type rp2SerialPort struct{ u *uartx.UART }

func (p *rp2SerialPort) WriteByte(b byte) error {
	var one [1]byte
	one[0] = b
	_, err := p.u.Write(one[:])
	return err
}
func (p *rp2SerialPort) Write(b []byte) (int, error) { return p.u.Write(b) }
func (p *rp2SerialPort) Buffered() int               { return p.u.Buffered() }
func (p *rp2SerialPort) Read(b []byte) (int, error)  { return p.u.Read(b) }
func (p *rp2SerialPort) Readable() <-chan struct{}   { return p.u.Readable() }
func (p *rp2SerialPort) RecvSomeContext(ctx context.Context, b []byte) (int, error) {
	return p.u.RecvSomeContext(ctx, b)
}

// DefaultSerial configures UART0 for the host link.
func DefaultSerial() UARTPort {
	hw := uartx.UART0
	_ = hw.Configure(uartx.UARTConfig{
		BaudRate: baud,
		TX:       machine.Pin(uartTX),
		RX:       machine.Pin(uartRX),
	})
	return &rp2SerialPort{u: hw}
}
