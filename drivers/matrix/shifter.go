package matrix

import (
	"ledmatrix-go/hw"
)

// Column frame layout: one byte per column, a bit per data line.
const (
	planeRed   = 0 // bits 0/1: R0/R1
	planeGreen = 2 // bits 2/3: G0/G1
	planeBlue  = 4 // bits 4/5: B0/B1
)

func planeBit(plane int, lowerHalf bool) byte {
	if lowerHalf {
		return 1 << uint(plane)
	}
	return 1 << uint(plane+1)
}

// ColumnShifter pushes one row's worth of column data into the panel.
// frame[i] carries the data-line bits for column i.
type ColumnShifter interface {
	Shift(frame []byte)
}

// gpioShifter bit-bangs the six data lines and the column clock.
type gpioShifter struct {
	pins hw.PanelPins
	last byte
	any  bool
}

func (s *gpioShifter) Shift(frame []byte) {
	s.any = false
	for _, b := range frame {
		// Only touch the data pins when the value changes; most of a
		// single-pixel frame is consecutive zeros.
		if !s.any || b != s.last {
			s.pins.R0.Set(b&(1<<planeRed) != 0)
			s.pins.R1.Set(b&(1<<(planeRed+1)) != 0)
			s.pins.G0.Set(b&(1<<planeGreen) != 0)
			s.pins.G1.Set(b&(1<<(planeGreen+1)) != 0)
			s.pins.B0.Set(b&(1<<planeBlue) != 0)
			s.pins.B1.Set(b&(1<<(planeBlue+1)) != 0)
			s.last = b
			s.any = true
		}
		s.pins.CK.Set(true)
		s.pins.CK.Set(false)
	}
}
