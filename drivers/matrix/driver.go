// Package matrix drives a 64x64 row/column multiplexed RGB LED panel. The
// panel is two stacked 32-row halves sharing five address bits; color data
// is shifted in column by column and latched per row.
//
// The driver splits logical state from hardware state: SetPixel/Clear record
// what should be lit, and the periodic Refresh call renders it. Refresh is
// safe to run from its own goroutine while the main control flow blocks in
// delays; it reads one atomically packed pixel word and touches nothing else.
package matrix

import (
	"sync"
	"sync/atomic"

	"ledmatrix-go/hw"
	"ledmatrix-go/types"
)

// Packed current-pixel word: valid<<31 | x<<16 | y<<8 | color. One word so
// the refresh goroutine never observes a torn coordinate/color triple.
const pixelValid = 1 << 31

func packPixel(x, y int, c types.Color) uint32 {
	return pixelValid | uint32(x)<<16 | uint32(y)<<8 | uint32(c)
}

func unpackPixel(w uint32) (x, y int, c types.Color, ok bool) {
	if w&pixelValid == 0 {
		return 0, 0, 0, false
	}
	return int(w >> 16 & 0xFF), int(w >> 8 & 0xFF), types.Color(w & 0xFF), true
}

// invalidLogLimit caps how many bad SetPixel calls get logged.
const invalidLogLimit = 3

type Driver struct {
	pins    hw.PanelPins
	shifter ColumnShifter

	rowAddr [types.MatrixHeight][5]bool

	current atomic.Uint32
	dirty   atomic.Bool
	forced  atomic.Bool

	// hwMu serialises hardware strobing between Refresh and Clear.
	hwMu  sync.Mutex
	frame [types.MatrixWidth]byte

	invalidDrops uint32
}

// Option configures the driver.
type Option func(*Driver)

// WithColumnShifter replaces the bit-banged column clocking, e.g. with an
// SPI-fed shift register bus.
func WithColumnShifter(s ColumnShifter) Option {
	return func(d *Driver) { d.shifter = s }
}

func New(pins hw.PanelPins, opts ...Option) *Driver {
	d := &Driver{pins: pins}
	for _, o := range opts {
		o(d)
	}
	if d.shifter == nil {
		d.shifter = &gpioShifter{pins: pins}
	}
	d.initAddressCache()
	return d
}

// Begin configures the pins and blanks the panel into a known state.
func (d *Driver) Begin() error {
	var err error
	d.pins.Each(func(p hw.GPIOPin) {
		if e := p.ConfigureOutput(false); e != nil && err == nil {
			err = e
		}
	})
	if err != nil {
		return err
	}
	d.pins.BL.Set(true) // keep blanked until first render
	d.Clear()
	return nil
}

// initAddressCache precomputes the five address-bit levels per row once.
// Row address depends on y mod half-height because of the split panel.
func (d *Driver) initAddressCache() {
	for y := 0; y < types.MatrixHeight; y++ {
		rowAddr := y % types.MatrixHalfHeight
		for bit := 0; bit < 5; bit++ {
			d.rowAddr[y][bit] = rowAddr&(1<<uint(bit)) != 0
		}
	}
}

func validCoordinate(x, y int) bool {
	return x >= 0 && x < types.MatrixWidth && y >= 0 && y < types.MatrixHeight
}

// SetPixel records (x,y,color) as the pixel to render. Out-of-range input is
// dropped, counted, and logged a few times; it never panics.
func (d *Driver) SetPixel(x, y int, c types.Color) bool {
	if !validCoordinate(x, y) || !c.Valid() {
		d.invalidDrops++
		if d.invalidDrops <= invalidLogLimit {
			println("Warn: matrix: dropped invalid pixel", x, y, int(c))
		}
		return false
	}
	d.current.Store(packPixel(x, y, c))
	d.dirty.Store(true)
	return true
}

// Clear turns off every cell and forgets the current pixel. Fast batched
// path: color lines low once, then address+clock strobes per row.
func (d *Driver) Clear() {
	d.current.Store(0)
	d.dirty.Store(false)
	d.forced.Store(false)

	d.hwMu.Lock()
	defer d.hwMu.Unlock()

	d.pins.BL.Set(true)

	for i := range d.frame {
		d.frame[i] = 0
	}
	const batch = 8
	for start := 0; start < types.MatrixHeight; start += batch {
		end := start + batch
		if end > types.MatrixHeight {
			end = types.MatrixHeight
		}
		for y := start; y < end; y++ {
			d.pins.LA.Set(true)
			d.strobeAddress(y)
			d.shifter.Shift(d.frame[:])
			d.pins.LA.Set(false)
		}
	}

	// Stay blanked until something is lit again.
	d.pins.BL.Set(true)
}

// ForceRedraw makes the next Refresh re-render even if nothing changed,
// e.g. after exiting idle.
func (d *Driver) ForceRedraw() {
	d.forced.Store(true)
}

// Refresh renders the current pixel if the logical state moved on from the
// physical one. It is the periodic tick body and must stay short.
func (d *Driver) Refresh() {
	if !d.dirty.Load() && !d.forced.Load() {
		return
	}
	w := d.current.Load()
	d.dirty.Store(false)
	d.forced.Store(false)

	x, y, c, ok := unpackPixel(w)
	if !ok {
		d.Clear()
		return
	}
	d.renderPixel(x, y, c)
}

// Current returns the logical pixel, if any.
func (d *Driver) Current() (x, y int, c types.Color, ok bool) {
	return unpackPixel(d.current.Load())
}

// InvalidDrops returns how many out-of-range writes were discarded.
func (d *Driver) InvalidDrops() uint32 { return d.invalidDrops }

// renderPixel drives one full row scan with only the target column lit.
func (d *Driver) renderPixel(x, y int, c types.Color) {
	d.hwMu.Lock()
	defer d.hwMu.Unlock()

	lowerHalf := y < types.MatrixHalfHeight

	d.pins.BL.Set(true) // blank during the update
	d.pins.LA.Set(true)

	d.strobeAddress(y)

	var bits byte
	if c&types.ColorRed != 0 {
		bits |= planeBit(planeRed, lowerHalf)
	}
	if c&types.ColorGreen != 0 {
		bits |= planeBit(planeGreen, lowerHalf)
	}
	if c&types.ColorBlue != 0 {
		bits |= planeBit(planeBlue, lowerHalf)
	}

	for i := range d.frame {
		d.frame[i] = 0
	}
	d.frame[x] = bits
	d.shifter.Shift(d.frame[:])

	d.pins.LA.Set(false) // latch
	d.pins.BL.Set(false) // enable output
}

// strobeAddress resets the address lines with a quick pulse, then applies
// the cached row address bits.
func (d *Driver) strobeAddress(y int) {
	d.pins.A[0].Set(true)
	d.pins.A[0].Set(false)
	for bit := 0; bit < 5; bit++ {
		d.pins.A[bit].Set(d.rowAddr[y][bit])
	}
}
