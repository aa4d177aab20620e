package matrix

import (
	"testing"

	"ledmatrix-go/hw"
	"ledmatrix-go/types"
)

func newTestDriver(t *testing.T) (*Driver, hw.Pins) {
	t.Helper()
	pins, _ := hw.FakePins()
	d := New(pins.Panel)
	if err := d.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return d, pins
}

func TestSetPixelValidation(t *testing.T) {
	d, _ := newTestDriver(t)

	for _, c := range []struct {
		x, y  int
		color types.Color
		ok    bool
	}{
		{0, 0, types.ColorRed, true},
		{63, 63, types.ColorMax, true},
		{32, 32, 0, true},
		{-1, 0, types.ColorRed, false},
		{64, 0, types.ColorRed, false},
		{0, -1, types.ColorRed, false},
		{0, 64, types.ColorRed, false},
		{0, 0, 8, false},
	} {
		if got := d.SetPixel(c.x, c.y, c.color); got != c.ok {
			t.Errorf("SetPixel(%d,%d,%d) = %t, want %t", c.x, c.y, c.color, got, c.ok)
		}
	}

	if d.InvalidDrops() != 5 {
		t.Errorf("InvalidDrops = %d, want 5", d.InvalidDrops())
	}
}

func TestInvalidSetPixelLeavesStateUnchanged(t *testing.T) {
	d, _ := newTestDriver(t)

	d.SetPixel(10, 20, types.ColorGreen)
	d.SetPixel(99, 99, types.ColorGreen)

	x, y, c, ok := d.Current()
	if !ok || x != 10 || y != 20 || c != types.ColorGreen {
		t.Errorf("Current = (%d,%d,%d,%t), want (10,20,green,true)", x, y, c, ok)
	}
}

func TestRefreshNoOpWhenClean(t *testing.T) {
	d, pins := newTestDriver(t)

	ck := pins.Panel.CK.(*hw.FakePin)
	ck.ResetCounters()

	d.Refresh()
	if ck.Writes != 0 {
		t.Errorf("clean Refresh strobed the clock %d times", ck.Writes)
	}
}

func TestRefreshRendersOnce(t *testing.T) {
	d, pins := newTestDriver(t)
	ck := pins.Panel.CK.(*hw.FakePin)

	d.SetPixel(5, 6, types.ColorBlue)
	ck.ResetCounters()

	d.Refresh()
	// One row scan: 64 columns, two clock edges each.
	if ck.Writes != 2*types.MatrixWidth {
		t.Errorf("render clocked %d writes, want %d", ck.Writes, 2*types.MatrixWidth)
	}

	ck.ResetCounters()
	d.Refresh() // now clean
	if ck.Writes != 0 {
		t.Errorf("second Refresh strobed %d times, want 0", ck.Writes)
	}
}

func TestForceRedraw(t *testing.T) {
	d, pins := newTestDriver(t)
	ck := pins.Panel.CK.(*hw.FakePin)

	d.SetPixel(1, 1, types.ColorRed)
	d.Refresh()

	ck.ResetCounters()
	d.ForceRedraw()
	d.Refresh()
	if ck.Writes == 0 {
		t.Error("forced Refresh did not render")
	}
}

func TestClearForgetsCurrent(t *testing.T) {
	d, _ := newTestDriver(t)

	d.SetPixel(3, 4, types.ColorGreen)
	d.Clear()

	if _, _, _, ok := d.Current(); ok {
		t.Error("Current still set after Clear")
	}
	// Clear leaves the panel blanked.
	d.Refresh() // must be a no-op (clean)
}

func TestClearStrobesEveryRow(t *testing.T) {
	d, pins := newTestDriver(t)
	ck := pins.Panel.CK.(*hw.FakePin)
	la := pins.Panel.LA.(*hw.FakePin)

	ck.ResetCounters()
	la.ResetCounters()
	d.Clear()

	if ck.Writes != 2*types.MatrixWidth*types.MatrixHeight {
		t.Errorf("Clear clocked %d writes, want %d", ck.Writes, 2*types.MatrixWidth*types.MatrixHeight)
	}
	// Latch raised and lowered once per row.
	if la.Writes != 2*types.MatrixHeight {
		t.Errorf("Clear latched %d writes, want %d", la.Writes, 2*types.MatrixHeight)
	}
}

func TestRowAddressCache(t *testing.T) {
	d, _ := newTestDriver(t)

	// Split-panel addressing: rows y and y+32 share an address.
	for y := 0; y < types.MatrixHalfHeight; y++ {
		if d.rowAddr[y] != d.rowAddr[y+types.MatrixHalfHeight] {
			t.Errorf("row %d and %d address bits differ", y, y+types.MatrixHalfHeight)
		}
	}
	// Row 5 = 0b00101.
	want := [5]bool{true, false, true, false, false}
	if d.rowAddr[5] != want {
		t.Errorf("rowAddr[5] = %v, want %v", d.rowAddr[5], want)
	}
}

func TestPixelPacking(t *testing.T) {
	for _, c := range []struct {
		x, y  int
		color types.Color
	}{
		{0, 0, 0},
		{63, 63, types.ColorMax},
		{32, 7, types.ColorGreen},
	} {
		x, y, col, ok := unpackPixel(packPixel(c.x, c.y, c.color))
		if !ok || x != c.x || y != c.y || col != c.color {
			t.Errorf("pack/unpack(%d,%d,%d) = (%d,%d,%d,%t)", c.x, c.y, c.color, x, y, col, ok)
		}
	}
	if _, _, _, ok := unpackPixel(0); ok {
		t.Error("zero word decoded as valid pixel")
	}
}

// spiRecorder satisfies drivers.SPI for shifter tests.
type spiRecorder struct {
	frames [][]byte
}

func (r *spiRecorder) Tx(w, _ []byte) error {
	r.frames = append(r.frames, append([]byte(nil), w...))
	return nil
}

func (r *spiRecorder) Transfer(b byte) (byte, error) { return b, nil }

func TestSPIShifter(t *testing.T) {
	pins, _ := hw.FakePins()
	rec := &spiRecorder{}
	d := New(pins.Panel, WithColumnShifter(NewSPIShifter(rec)))
	if err := d.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	rec.frames = nil
	d.SetPixel(9, 2, types.ColorRed)
	d.Refresh()

	if len(rec.frames) != 1 {
		t.Fatalf("got %d SPI frames, want 1", len(rec.frames))
	}
	frame := rec.frames[0]
	if len(frame) != types.MatrixWidth {
		t.Fatalf("frame length %d, want %d", len(frame), types.MatrixWidth)
	}
	for i, b := range frame {
		switch {
		case i == 9 && b == 0:
			t.Error("target column empty in SPI frame")
		case i != 9 && b != 0:
			t.Errorf("column %d unexpectedly lit", i)
		}
	}
}
