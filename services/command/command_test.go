package command

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledmatrix-go/bus"
	"ledmatrix-go/hw"
	"ledmatrix-go/pattern"
	"ledmatrix-go/services/sequencer"
	"ledmatrix-go/types"
)

func startService(t *testing.T) (*hw.FakeUART, *bus.Bus) {
	t.Helper()
	u := hw.NewFakeUART()
	b := bus.NewBus(64)
	svc := New(u, b.NewConnection("command"))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, svc.Start(ctx))
	return u, b
}

// nextCmd waits for the next decoded command, skipping the activity marks
// the reader publishes for every received chunk.
func nextCmd(t *testing.T, sub *bus.Subscription) types.Command {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case m := <-sub.Channel():
			cmd, ok := m.Payload.(types.Command)
			require.True(t, ok)
			if cmd.Op == types.OpTouch {
				continue
			}
			return cmd
		case <-deadline:
			t.Fatal("no command decoded")
		}
	}
}

func noCmd(t *testing.T, sub *bus.Subscription) {
	t.Helper()
	deadline := time.After(50 * time.Millisecond)
	for {
		select {
		case m := <-sub.Channel():
			cmd := m.Payload.(types.Command)
			if cmd.Op != types.OpTouch {
				t.Fatalf("unexpected command %v", cmd)
			}
		case <-deadline:
			return
		}
	}
}

func TestDecode(t *testing.T) {
	cases := []struct {
		line string
		want types.Command
	}{
		{"P1", types.Command{Op: types.OpSetKind, Arg0: 1}},
		{"I16", types.Command{Op: types.OpSetSlot, Arg0: 0, Arg1: 16}},
		{"M24", types.Command{Op: types.OpSetSlot, Arg0: 1, Arg1: 24}},
		{"O31", types.Command{Op: types.OpSetSlot, Arg0: 2, Arg1: 31}},
		{"S2", types.Command{Op: types.OpSetStride, Arg0: 2}},
		{"K20", types.Command{Op: types.OpSetMask, Arg0: 20}},
		{"R", types.Command{Op: types.OpStart}},
		{"h", types.Command{Op: types.OpPause}},
		{"X", types.Command{Op: types.OpStop}},
		{"i", types.Command{Op: types.OpIdleEnter}},
		{"a", types.Command{Op: types.OpIdleExit}},
		{"L10,20,4", types.Command{Op: types.OpSetPixel, Arg0: 10, Arg1: 20, Arg2: 4}},
		{"C S,1,400,100,1500", types.Command{Op: types.OpCamConfigure, Camera: types.CameraSettings{
			Enabled: true, PreDelayMs: 400, PulseWidthMs: 100, PostDelayMs: 1500,
		}}},
		{"C T,1,250", types.Command{Op: types.OpCamTest, Arg0: 1, Arg1: 250}},
		{"v", types.Command{Op: types.OpEchoOn}},
		{"q", types.Command{Op: types.OpEchoOff}},
		{"p", types.Command{Op: types.OpExport}},
	}

	u, b := startService(t)
	sub := b.NewConnection("seq").Subscribe(sequencer.TopicCommand)

	for _, tc := range cases {
		u.HostWrite([]byte(tc.line + "\n"))
		got := nextCmd(t, sub)
		assert.Equal(t, tc.want, got, "line %q", tc.line)
	}
}

func TestMalformedIgnored(t *testing.T) {
	u, b := startService(t)
	sub := b.NewConnection("seq").Subscribe(sequencer.TopicCommand)

	for _, line := range []string{
		"L10,20",       // missing argument
		"Lx,y,z",       // non-numeric
		"P",            // missing argument
		"C S,1,2",      // wrong sub-command arity
		"C Z,1",        // unknown sub-command
		"Z",            // unknown opcode
		"L1,2,3,4,5,6", // argument budget exceeded
	} {
		u.HostWrite([]byte(line + "\n"))
	}
	noCmd(t, sub)
}

func TestCRLFAndSplitChunks(t *testing.T) {
	u, b := startService(t)
	sub := b.NewConnection("seq").Subscribe(sequencer.TopicCommand)

	u.HostWrite([]byte("L5,"))
	u.HostWrite([]byte("6,2\r"))
	u.HostWrite([]byte("\n"))

	got := nextCmd(t, sub)
	assert.Equal(t, types.Command{Op: types.OpSetPixel, Arg0: 5, Arg1: 6, Arg2: 2}, got)
}

func TestOverlongLineDropped(t *testing.T) {
	u, b := startService(t)
	sub := b.NewConnection("seq").Subscribe(sequencer.TopicCommand)

	u.HostWrite([]byte(strings.Repeat("A", 100)))
	u.HostWrite([]byte("\nX\n"))

	got := nextCmd(t, sub)
	assert.Equal(t, types.OpStop, got.Op, "line after the dropped one still decodes")
	noCmd(t, sub)
}

func TestEveryChunkMarksActivity(t *testing.T) {
	u, b := startService(t)
	sub := b.NewConnection("seq").Subscribe(sequencer.TopicCommand)

	u.HostWrite([]byte("garbage with no newline"))

	select {
	case m := <-sub.Channel():
		cmd := m.Payload.(types.Command)
		assert.Equal(t, types.OpTouch, cmd.Op)
	case <-time.After(2 * time.Second):
		t.Fatal("no activity mark published")
	}
}

func waitOutput(t *testing.T, u *hw.FakeUART, want string) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	var out []byte
	for time.Now().Before(deadline) {
		out = append(out, u.HostRead()...)
		if strings.Contains(string(out), want) {
			return string(out)
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("output %q never contained %q", out, want)
	return ""
}

func TestEmitStatus(t *testing.T) {
	u, b := startService(t)
	host := b.NewConnection("seq")

	st := types.Status{Running: true, Progress: 0.5, CameraEnabled: true}
	host.Publish(host.NewMessage(sequencer.TopicStatus, st, true))

	waitOutput(t, u, "STATUS,1,0,0.500,1,0,0\n")
}

func TestEmitLED(t *testing.T) {
	u, b := startService(t)
	host := b.NewConnection("seq")

	host.Publish(host.NewMessage(sequencer.TopicLED,
		types.LEDUpdate{X: 10, Y: 20, Color: types.ColorBlue, On: true}, true))
	waitOutput(t, u, "LED,10,20,4\n")

	host.Publish(host.NewMessage(sequencer.TopicLED,
		types.LEDUpdate{X: 10, Y: 20, Color: types.ColorBlue, On: false}, true))
	waitOutput(t, u, "LED,10,20,0\n")
}

func TestEmitCamera(t *testing.T) {
	u, b := startService(t)
	host := b.NewConnection("seq")

	host.Publish(host.NewMessage(sequencer.TopicCamera,
		types.CameraStatus{TriggerActive: true, Error: types.CameraErrTimeout}, false))
	waitOutput(t, u, "CAMERA,1,1\n")
}

func TestEmitExport(t *testing.T) {
	u, b := startService(t)
	host := b.NewConnection("seq")

	g, _, err := pattern.Generate(types.PatternParams{Kind: types.PatternCenterOnly, Stride: 1})
	require.NoError(t, err)
	host.Publish(host.NewMessage(sequencer.TopicExport, sequencer.Export{Grid: g}, false))

	out := waitOutput(t, u, "ROW,63,")
	assert.True(t, strings.HasPrefix(out, "PATTERN,64,64\n"))
	// Only the center pixel is lit: row 32 carries bit 32.
	assert.Contains(t, out, "ROW,32,0000000100000000\n")
	assert.Contains(t, out, "ROW,0,0000000000000000\n")
	assert.Equal(t, 65, strings.Count(out, "\n"))
}
