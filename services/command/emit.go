package command

import (
	"context"

	"ledmatrix-go/bus"
	"ledmatrix-go/services/sequencer"
	"ledmatrix-go/types"
	"ledmatrix-go/x/conv"
)

// emitSubs are the bus subscriptions the emitter drains; Start creates them
// before the goroutine runs.
type emitSubs struct {
	status, led, cam, export *bus.Subscription
}

// emitLoop turns bus traffic back into protocol text. One goroutine owns the
// TX side of the port, so lines never interleave. The scratch buffer is
// reused across lines to stay allocation-free in steady state.
func (s *Service) emitLoop(ctx context.Context, subs emitSubs) {
	defer s.conn.Disconnect()

	buf := make([]byte, 0, 96)
	for {
		select {
		case <-ctx.Done():
			println("Info: command: emitter stopping")
			return
		case m := <-subs.status.Channel():
			if st, ok := m.Payload.(types.Status); ok {
				s.writeLine(appendStatus(buf, st))
			}
		case m := <-subs.led.Channel():
			if upd, ok := m.Payload.(types.LEDUpdate); ok {
				s.writeLine(appendLED(buf, upd))
			}
		case m := <-subs.cam.Channel():
			if cs, ok := m.Payload.(types.CameraStatus); ok {
				s.writeLine(appendCamera(buf, cs))
			}
		case m := <-subs.export.Channel():
			if exp, ok := m.Payload.(sequencer.Export); ok {
				s.writeExport(buf, exp)
			}
		}
	}
}

func (s *Service) writeLine(line []byte) {
	line = append(line, '\n')
	if _, err := s.port.Write(line); err != nil {
		println("Warn: command: write failed:", err.Error())
	}
}

func appendLED(dst []byte, upd types.LEDUpdate) []byte {
	c := upd.Color
	if !upd.On {
		c = types.ColorOff
	}
	dst = append(dst[:0], "LED,"...)
	dst = conv.AppendInt(dst, upd.X)
	dst = append(dst, ',')
	dst = conv.AppendInt(dst, upd.Y)
	dst = append(dst, ',')
	dst = conv.AppendInt(dst, int(c))
	return dst
}

func appendStatus(dst []byte, st types.Status) []byte {
	dst = append(dst[:0], "STATUS,"...)
	dst = conv.AppendBit(dst, st.Running)
	dst = append(dst, ',')
	dst = conv.AppendBit(dst, st.Idle)
	dst = append(dst, ',')
	dst = conv.AppendMilli(dst, int(st.Progress*1000))
	dst = append(dst, ',')
	dst = conv.AppendBit(dst, st.CameraEnabled)
	dst = append(dst, ',')
	dst = conv.AppendBit(dst, st.TriggerActive)
	dst = append(dst, ',')
	dst = conv.AppendInt(dst, int(st.CameraError))
	return dst
}

func appendCamera(dst []byte, cs types.CameraStatus) []byte {
	dst = append(dst[:0], "CAMERA,"...)
	dst = conv.AppendBit(dst, cs.TriggerActive)
	dst = append(dst, ',')
	dst = conv.AppendInt(dst, int(cs.Error))
	return dst
}

// writeExport dumps the full pattern as a header plus one hex-packed row
// line per matrix row, bit 0 = column 0.
func (s *Service) writeExport(buf []byte, exp sequencer.Export) {
	if exp.Grid == nil {
		return
	}
	line := append(buf[:0], "PATTERN,"...)
	line = conv.AppendInt(line, types.MatrixWidth)
	line = append(line, ',')
	line = conv.AppendInt(line, types.MatrixHeight)
	s.writeLine(line)

	for y := 0; y < types.MatrixHeight; y++ {
		line = append(buf[:0], "ROW,"...)
		line = conv.AppendInt(line, y)
		line = append(line, ',')
		line = conv.AppendU64Hex(line, exp.Grid.RowBits(y))
		s.writeLine(line)
	}
}
