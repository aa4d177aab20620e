// paneltest is a bring-up check for the matrix wiring: it walks a fixed set
// of probe pixels through every color so shorted address lines or swapped
// color planes show up immediately. Flash it to the board instead of the
// main firmware; on a desktop host it runs against the fake pins and just
// prints the walk.
package main

import (
	"time"

	"ledmatrix-go/drivers/matrix"
	"ledmatrix-go/hw"
	"ledmatrix-go/types"
)

const (
	dwell       = 500 * time.Millisecond
	refreshTick = 10 * time.Millisecond
)

// Probe points: corners, center, and one cell per panel half so the split
// addressing (y mod 32) is exercised on both banks.
var probes = []types.Cell{
	{X: 0, Y: 0},
	{X: 63, Y: 0},
	{X: 0, Y: 63},
	{X: 63, Y: 63},
	{X: 32, Y: 32},
	{X: 16, Y: 10},
	{X: 16, Y: 42},
}

var colors = []types.Color{
	types.ColorRed,
	types.ColorGreen,
	types.ColorBlue,
	types.ColorMax,
}

func main() {
	println("Info: paneltest starting")

	pins := hw.DefaultPins()
	mat := matrix.New(pins.Panel, matrixOptions()...)
	if err := mat.Begin(); err != nil {
		println("Error: matrix init:", err.Error())
		return
	}

	go func() {
		for {
			mat.Refresh()
			time.Sleep(refreshTick)
		}
	}()

	for cycle := 1; ; cycle++ {
		println("Info: paneltest cycle", cycle)
		for _, c := range colors {
			for _, p := range probes {
				println("Info: probe", p.X, p.Y, "color", int(c))
				mat.SetPixel(p.X, p.Y, c)
				time.Sleep(dwell)
			}
		}
		mat.Clear()
		time.Sleep(dwell)
	}
}
