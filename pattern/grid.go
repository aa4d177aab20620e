package pattern

import (
	"ledmatrix-go/types"
)

// Grid is the full lit/unlit plane of the panel.
type Grid struct {
	cells [types.MatrixHeight][types.MatrixWidth]bool
}

func (g *Grid) At(x, y int) bool {
	if x < 0 || x >= types.MatrixWidth || y < 0 || y >= types.MatrixHeight {
		return false
	}
	return g.cells[y][x]
}

func (g *Grid) set(x, y int, on bool) {
	if x < 0 || x >= types.MatrixWidth || y < 0 || y >= types.MatrixHeight {
		return
	}
	g.cells[y][x] = on
}

// CountLit returns the number of lit cells.
func (g *Grid) CountLit() int {
	n := 0
	for y := 0; y < types.MatrixHeight; y++ {
		for x := 0; x < types.MatrixWidth; x++ {
			if g.cells[y][x] {
				n++
			}
		}
	}
	return n
}

// RowBits packs row y into a bitmap, bit 0 = column 0. Used by the pattern
// export command.
func (g *Grid) RowBits(y int) uint64 {
	if y < 0 || y >= types.MatrixHeight {
		return 0
	}
	var bits uint64
	for x := 0; x < types.MatrixWidth; x++ {
		if g.cells[y][x] {
			bits |= 1 << uint(x)
		}
	}
	return bits
}

// Sequence derives the ordered traversal: a row-major scan over lit cells.
// The order is stable for identical grids so host-side progress stays
// meaningful across reconnects.
func (g *Grid) Sequence() []types.Cell {
	seq := make([]types.Cell, 0, g.CountLit())
	for y := 0; y < types.MatrixHeight; y++ {
		for x := 0; x < types.MatrixWidth; x++ {
			if g.cells[y][x] {
				seq = append(seq, types.Cell{X: x, Y: y})
			}
		}
	}
	return seq
}
