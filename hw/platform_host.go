//go:build !linux && !rp2040 && !rp2350

package hw

// DefaultPins returns fakes on plain host builds; the firmware runs as a
// simulator with the serial protocol on stdio.
func DefaultPins() Pins {
	pins, _ := FakePins()
	return pins
}
