// Package command speaks the line-oriented serial protocol: one opcode
// character per line, optional comma-separated decimal arguments. Decoded
// commands go out on the sequencer's command topic; the emitter half mirrors
// status traffic back to the host as text lines.
package command

import (
	"context"
	"strings"
	"time"

	"ledmatrix-go/bus"
	"ledmatrix-go/hw"
	"ledmatrix-go/services/sequencer"
	"ledmatrix-go/types"
	"ledmatrix-go/x/strconvx"
)

const (
	maxLine  = 64
	maxArgs  = 5
	recvWait = 250 * time.Millisecond
)

type Service struct {
	port hw.UARTPort
	conn *bus.Connection
}

func New(port hw.UARTPort, conn *bus.Connection) *Service {
	return &Service{port: port, conn: conn}
}

func (s *Service) Start(ctx context.Context) error {
	// Subscribe before spawning the emitter so status traffic published
	// right after boot is never dropped.
	subs := emitSubs{
		status: s.conn.Subscribe(sequencer.TopicStatus),
		led:    s.conn.Subscribe(sequencer.TopicLED),
		cam:    s.conn.Subscribe(sequencer.TopicCamera),
		export: s.conn.Subscribe(sequencer.TopicExport),
	}
	go s.readLoop(ctx)
	go s.emitLoop(ctx, subs)
	return nil
}

// readLoop accumulates bytes into lines: LF terminates, CR is ignored,
// overlong lines are dropped whole. Every received chunk counts as host
// activity regardless of whether it parses.
func (s *Service) readLoop(ctx context.Context) {
	buf := make([]byte, maxLine)
	line := make([]byte, 0, maxLine)
	overflow := false

	for {
		select {
		case <-ctx.Done():
			println("Info: command: reader stopping")
			return
		case <-s.port.Readable():
			rctx, rcancel := context.WithTimeout(ctx, recvWait)
			n, _ := s.port.RecvSomeContext(rctx, buf)
			rcancel()
			if n <= 0 {
				continue
			}
			s.send(types.Command{Op: types.OpTouch})
			for i := 0; i < n; i++ {
				switch b := buf[i]; b {
				case '\n':
					if overflow {
						println("Warn: command: line too long, dropped")
						overflow = false
					} else if len(line) > 0 {
						s.handleLine(line)
					}
					line = line[:0]
				case '\r':
					// ignore
				default:
					if len(line) < maxLine {
						line = append(line, b)
					} else {
						overflow = true
					}
				}
			}
		}
	}
}

func (s *Service) send(cmd types.Command) {
	s.conn.Publish(s.conn.NewMessage(sequencer.TopicCommand, cmd, false))
}

// handleLine decodes one complete line. Malformed input is logged and
// dropped; the device never halts on bad host data.
func (s *Service) handleLine(line []byte) {
	op := line[0]
	args, ok := splitArgs(string(line[1:]))
	if !ok {
		println("Warn: command: too many arguments:", string(line))
		return
	}

	switch op {
	case 'P':
		s.sendInt(types.OpSetKind, args, line)
	case 'I':
		s.sendSlot(0, args, line)
	case 'M':
		s.sendSlot(1, args, line)
	case 'O':
		s.sendSlot(2, args, line)
	case 'S':
		s.sendInt(types.OpSetStride, args, line)
	case 'K':
		s.sendInt(types.OpSetMask, args, line)

	case 'R':
		s.send(types.Command{Op: types.OpStart})
	case 'h':
		s.send(types.Command{Op: types.OpPause})
	case 'X':
		s.send(types.Command{Op: types.OpStop})
	case 'i':
		s.send(types.Command{Op: types.OpIdleEnter})
	case 'a':
		s.send(types.Command{Op: types.OpIdleExit})

	case 'L':
		vals, ok := parseInts(args, 3)
		if !ok {
			logMalformed(line)
			return
		}
		s.send(types.Command{Op: types.OpSetPixel, Arg0: vals[0], Arg1: vals[1], Arg2: vals[2]})

	case 'C':
		s.handleCamera(args, line)

	case 'v':
		s.send(types.Command{Op: types.OpEchoOn})
	case 'q':
		s.send(types.Command{Op: types.OpEchoOff})
	case 'p':
		s.send(types.Command{Op: types.OpExport})

	default:
		// Unknown opcodes still counted as activity by the touch above.
		println("Warn: command: unknown opcode:", string(line))
	}
}

// handleCamera decodes the two C sub-commands: "C S,enabled,pre,pulse,post"
// updates the trigger settings, "C T,enabled,width" fires a one-off test
// pulse.
func (s *Service) handleCamera(args []string, line []byte) {
	if len(args) == 0 {
		logMalformed(line)
		return
	}
	switch args[0] {
	case "S":
		vals, ok := parseInts(args[1:], 4)
		if !ok {
			logMalformed(line)
			return
		}
		s.send(types.Command{Op: types.OpCamConfigure, Camera: types.CameraSettings{
			Enabled:      vals[0] != 0,
			PreDelayMs:   vals[1],
			PulseWidthMs: vals[2],
			PostDelayMs:  vals[3],
		}})
	case "T":
		vals, ok := parseInts(args[1:], 2)
		if !ok {
			logMalformed(line)
			return
		}
		s.send(types.Command{Op: types.OpCamTest, Arg0: vals[0], Arg1: vals[1]})
	default:
		logMalformed(line)
	}
}

func (s *Service) sendInt(op types.Op, args []string, line []byte) {
	vals, ok := parseInts(args, 1)
	if !ok {
		logMalformed(line)
		return
	}
	s.send(types.Command{Op: op, Arg0: vals[0]})
}

func (s *Service) sendSlot(slot int, args []string, line []byte) {
	vals, ok := parseInts(args, 1)
	if !ok {
		logMalformed(line)
		return
	}
	s.send(types.Command{Op: types.OpSetSlot, Arg0: slot, Arg1: vals[0]})
}

func logMalformed(line []byte) {
	println("Warn: command: malformed line:", string(line))
}

// splitArgs tokenizes the remainder of a line. An empty remainder yields no
// arguments; ok is false when the argument budget is exceeded.
func splitArgs(rest string) ([]string, bool) {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil, true
	}
	parts := strings.Split(rest, ",")
	if len(parts) > maxArgs {
		return nil, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, true
}

// parseInts requires exactly want numeric arguments.
func parseInts(args []string, want int) ([maxArgs]int, bool) {
	var vals [maxArgs]int
	if len(args) != want {
		return vals, false
	}
	for i, a := range args {
		v, err := strconvx.Atoi(a)
		if err != nil {
			return vals, false
		}
		vals[i] = v
	}
	return vals, true
}
