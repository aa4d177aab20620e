package matrix

import (
	"tinygo.org/x/drivers"
)

// SPIShifter clocks column frames through an external shift-register bus
// instead of bit-banging the data lines. One byte per column, same frame
// layout as the GPIO path; the registers fan the bits out to the panel's
// six data lines.
type SPIShifter struct {
	spi drivers.SPI
}

func NewSPIShifter(spi drivers.SPI) *SPIShifter {
	return &SPIShifter{spi: spi}
}

func (s *SPIShifter) Shift(frame []byte) {
	// Errors here are advisory; the next refresh re-shifts the row anyway.
	_ = s.spi.Tx(frame, nil)
}
