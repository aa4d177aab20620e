// Firmware entry for the LED matrix controller. The same binary drives the
// RP2040 board (TinyGo, rp2040 tag), real GPIO on a Linux SBC, or an
// in-memory simulation on any desktop host where the serial protocol runs
// over stdin/stdout.
package main

import (
	"context"
	"time"

	"ledmatrix-go/bus"
	"ledmatrix-go/drivers/camtrig"
	"ledmatrix-go/drivers/matrix"
	"ledmatrix-go/hw"
	"ledmatrix-go/services/command"
	"ledmatrix-go/services/sequencer"
	"ledmatrix-go/types"
)

func main() {
	println("Info: ledmatrix starting")

	cfg := types.DefaultConfig()
	pins := hw.DefaultPins()
	port := hw.DefaultSerial()

	mat := matrix.New(pins.Panel)
	if err := mat.Begin(); err != nil {
		println("Error: matrix init:", err.Error())
		return
	}
	cam := camtrig.New(pins.Trigger, nil, cfg.Camera)
	if err := cam.Begin(); err != nil {
		println("Error: camera init:", err.Error())
		return
	}

	b := bus.NewBus(16)
	ctx := context.Background()

	seq := sequencer.New(cfg, mat, cam, b.NewConnection("sequencer"))
	if err := seq.Start(ctx); err != nil {
		println("Error: sequencer init:", err.Error())
		return
	}
	if err := command.New(port, b.NewConnection("command")).Start(ctx); err != nil {
		println("Error: command init:", err.Error())
		return
	}

	for {
		time.Sleep(time.Hour)
	}
}
