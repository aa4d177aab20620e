//go:build linux && !rp2040 && !rp2350

package hw

import (
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// On linux the panel can hang off a Pi header via periph.io. DefaultPins
// falls back to fakes when the host has no GPIO (CI, desktops), so the
// firmware binary still runs as a pure simulator there.

type periphGPIO struct {
	p gpio.PinIO
	n int
}

func (g *periphGPIO) Number() int { return g.n }

func (g *periphGPIO) ConfigureInput(pull Pull) error {
	var p gpio.Pull
	switch pull {
	case PullUp:
		p = gpio.PullUp
	case PullDown:
		p = gpio.PullDown
	default:
		p = gpio.Float
	}
	return g.p.In(p, gpio.NoEdge)
}

func (g *periphGPIO) ConfigureOutput(initial bool) error {
	return g.p.Out(gpio.Level(initial))
}

func (g *periphGPIO) Set(level bool) { _ = g.p.Out(gpio.Level(level)) }
func (g *periphGPIO) Get() bool      { return bool(g.p.Read()) }
func (g *periphGPIO) Toggle()        { g.Set(!g.Get()) }

// Header pin names for the panel, matching the rp2040 carrier layout.
var linuxPinNames = []string{
	"GPIO2", "GPIO3", "GPIO4", // BL CK LA
	"GPIO5", "GPIO6", "GPIO7", "GPIO8", "GPIO9", // A0..A4
	"GPIO10", "GPIO11", "GPIO12", "GPIO13", "GPIO14", "GPIO15", // color data
	"GPIO16", // trigger
}

// DefaultPins resolves the header pins through periph, or returns fakes when
// the platform exposes none.
func DefaultPins() Pins {
	if _, err := host.Init(); err != nil {
		pins, _ := FakePins()
		return pins
	}
	resolved := make([]GPIOPin, 0, len(linuxPinNames))
	for i, name := range linuxPinNames {
		p := gpioreg.ByName(name)
		if p == nil {
			pins, _ := FakePins()
			return pins
		}
		resolved = append(resolved, &periphGPIO{p: p, n: i})
	}
	return Pins{
		Panel: PanelPins{
			BL: resolved[0], CK: resolved[1], LA: resolved[2],
			A:  [5]GPIOPin{resolved[3], resolved[4], resolved[5], resolved[6], resolved[7]},
			R0: resolved[8], R1: resolved[9],
			G0: resolved[10], G1: resolved[11],
			B0: resolved[12], B1: resolved[13],
		},
		Trigger: resolved[14],
	}
}
