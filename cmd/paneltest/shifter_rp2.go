//go:build rp2040

package main

import (
	"machine"

	"ledmatrix-go/drivers/matrix"
)

// On the rp2040 bring-up rig the six panel data lines hang off shift
// registers fed by SPI0, so the walk exercises the SPI column path rather
// than bit-banging.
func matrixOptions() []matrix.Option {
	machine.SPI0.Configure(machine.SPIConfig{Frequency: 8_000_000})
	return []matrix.Option{matrix.WithColumnShifter(matrix.NewSPIShifter(machine.SPI0))}
}
