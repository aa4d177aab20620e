// Package pattern computes illumination patterns and their traversal order.
// Generation is pure and deterministic: identical parameters always produce
// an identical grid and sequence.
package pattern

import (
	"math"

	"ledmatrix-go/errcode"
	"ledmatrix-go/types"
)

// ringTolerance is the half-width of a ring: a cell belongs to a ring when
// its center distance is within this of the ring radius.
const ringTolerance = 1.0

// spiralStep is the angular step in radians when tracing a spiral.
const spiralStep = 0.1

// Generate computes the grid for p and derives the sequence. On invalid
// parameters it returns an error and callers keep their previous pattern.
func Generate(p types.PatternParams) (*Grid, []types.Cell, error) {
	stride := p.Stride
	if stride < 1 {
		stride = 1
	}

	g := &Grid{}
	var err error
	switch p.Kind {
	case types.PatternConcentricRings:
		err = genRings(g, stride, p.InnerRadius, p.MiddleRadius, p.OuterRadius)
	case types.PatternCenterOnly:
		// Just the center; forced below.
	case types.PatternSpiral:
		err = genSpiral(g, stride, p.SpiralMaxRadius, p.SpiralTurns)
	case types.PatternGrid:
		err = genGrid(g, stride, p.GridPointSize, p.GridOffsetX, p.GridOffsetY)
	default:
		err = errcode.InvalidParams
	}
	if err != nil {
		return nil, nil, err
	}

	g.set(types.CenterX, types.CenterY, true)

	if p.MaskRadius > 0 {
		applyMask(g, float64(p.MaskRadius))
		// The mask never removes the center (distance zero).
	}

	return g, g.Sequence(), nil
}

func distance(x, y, cx, cy int) float64 {
	dx := float64(x - cx)
	dy := float64(y - cy)
	return math.Sqrt(dx*dx + dy*dy)
}

func onRing(d, radius float64) bool {
	return math.Abs(d-radius) < ringTolerance
}

func genRings(g *Grid, stride, inner, middle, outer int) error {
	maxRadius := float64(types.MatrixWidth) / 2
	if types.MatrixHeight < types.MatrixWidth {
		maxRadius = float64(types.MatrixHeight) / 2
	}
	if inner <= 0 || middle <= 0 || outer <= 0 || float64(outer) >= maxRadius {
		return errcode.InvalidParams
	}

	for y := 0; y < types.MatrixHeight; y++ {
		for x := 0; x < types.MatrixWidth; x++ {
			if (x+y)%stride != 0 {
				continue
			}
			d := distance(x, y, types.CenterX, types.CenterY)
			if onRing(d, float64(inner)) || onRing(d, float64(middle)) || onRing(d, float64(outer)) {
				g.set(x, y, true)
			}
		}
	}
	return nil
}

func genSpiral(g *Grid, stride, maxRadius, turns int) error {
	if turns < 1 || maxRadius < 1 {
		return errcode.InvalidParams
	}
	limit := types.CenterX
	if types.CenterY < limit {
		limit = types.CenterY
	}
	if maxRadius > limit {
		maxRadius = limit
	}

	end := 2 * math.Pi * float64(turns)
	for angle := 0.0; angle < end; angle += spiralStep {
		radius := angle / end * float64(maxRadius)
		x := types.CenterX + int(math.Round(radius*math.Cos(angle)))
		y := types.CenterY + int(math.Round(radius*math.Sin(angle)))
		if x < 0 || x >= types.MatrixWidth || y < 0 || y >= types.MatrixHeight {
			continue
		}
		if (x+y)%stride != 0 {
			continue
		}
		g.set(x, y, true)
	}
	return nil
}

func genGrid(g *Grid, stride, pointSize, offX, offY int) error {
	if pointSize < 1 {
		pointSize = 1
	}
	if pointSize > stride {
		// Blocks must not merge into solid fill.
		pointSize = stride
	}

	for y := 0; y < types.MatrixHeight; y += stride {
		for x := 0; x < types.MatrixWidth; x += stride {
			for dy := 0; dy < pointSize; dy++ {
				for dx := 0; dx < pointSize; dx++ {
					// Point blocks wrap at the matrix edges.
					px := (x + offX + dx) % types.MatrixWidth
					py := (y + offY + dy) % types.MatrixHeight
					if px < 0 {
						px += types.MatrixWidth
					}
					if py < 0 {
						py += types.MatrixHeight
					}
					g.set(px, py, true)
				}
			}
		}
	}
	return nil
}

func applyMask(g *Grid, maskRadius float64) {
	for y := 0; y < types.MatrixHeight; y++ {
		for x := 0; x < types.MatrixWidth; x++ {
			if !g.cells[y][x] {
				continue
			}
			if distance(x, y, types.CenterX, types.CenterY) > maskRadius {
				g.cells[y][x] = false
			}
		}
	}
}

// Validate reports whether a generated grid is usable (at least one cell).
func Validate(g *Grid) bool { return g != nil && g.CountLit() > 0 }
