package sequencer

import (
	"context"
	"sync/atomic"
	"time"

	"ledmatrix-go/bus"
	"ledmatrix-go/drivers/camtrig"
	"ledmatrix-go/drivers/matrix"
	"ledmatrix-go/errcode"
	"ledmatrix-go/pattern"
	"ledmatrix-go/types"
	"ledmatrix-go/x/timex"
)

// Bus topics owned by this service. The protocol service publishes decoded
// commands on TopicCommand and mirrors the rest back to the host.
var (
	TopicCommand = bus.Topic{"seq", "cmd"}
	TopicStatus  = bus.Topic{"seq", "status"}
	TopicLED     = bus.Topic{"led", "state"}
	TopicCamera  = bus.Topic{"cam", "event"}
	TopicExport  = bus.Topic{"pattern", "export"}
)

// Export is published on TopicExport in response to OpExport.
type Export struct {
	Grid *pattern.Grid
}

const cmdPoll = 5 * time.Millisecond

// Service owns the acquisition state machine. All mutation happens on the
// single loop goroutine; the refresh goroutine only reads atomics and calls
// into the matrix driver, which is safe for that split.
type Service struct {
	cfg  types.Config
	mat  *matrix.Driver
	cam  *camtrig.Driver
	conn *bus.Connection

	grid   *pattern.Grid
	seq    []types.Cell
	params types.PatternParams

	state      types.RunState
	index      int
	cyclesDone int
	selfRun    bool
	echo       bool

	idle     atomic.Bool
	hbActive atomic.Bool

	activityMs uint32
	lastBeatMs uint32
	beatOnMs   uint32

	diag  errcode.Counter
	sleep func(time.Duration)
}

func New(cfg types.Config, mat *matrix.Driver, cam *camtrig.Driver, conn *bus.Connection) *Service {
	return &Service{
		cfg:    cfg,
		mat:    mat,
		cam:    cam,
		conn:   conn,
		params: cfg.Pattern,
		echo:   true,
		sleep:  time.Sleep,
	}
}

// SetSleeper replaces the inter-frame delay primitive. Tests only.
func (s *Service) SetSleeper(f func(time.Duration)) { s.sleep = f }

// Start generates the boot pattern and launches the control and refresh
// goroutines. With SelfRunOnBoot set the sequence runs once unattended and
// the device then drops into idle.
func (s *Service) Start(ctx context.Context) error {
	if err := s.regenerate(); err != nil {
		return err
	}
	s.touch()
	if s.cfg.SelfRunOnBoot {
		s.selfRun = true
		s.begin()
	}
	s.publishStatus()
	// Subscribe before the loop goroutine exists so a command published the
	// moment Start returns cannot be dropped.
	sub := s.conn.Subscribe(TopicCommand)
	go s.refreshLoop(ctx)
	go s.serviceLoop(ctx, sub)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, sub *bus.Subscription) {
	defer s.conn.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			println("Info: sequencer stopping")
			s.mat.Clear()
			return
		default:
		}
		s.drain(sub)

		if s.idle.Load() {
			s.idleTick()
			s.wait(ctx, sub, cmdPoll)
			continue
		}
		if s.state != types.RunRunning &&
			timex.Exceeded(timex.NowMs(), s.activityMs, s.cfg.IdleTimeout) {
			s.enterIdle()
			continue
		}
		if s.state == types.RunRunning {
			s.step()
			continue
		}
		s.wait(ctx, sub, cmdPoll)
	}
}

func (s *Service) refreshLoop(ctx context.Context) {
	tick := time.NewTicker(s.cfg.RefreshPeriod)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			// An idle panel is blanked; skip the scan except while the
			// heartbeat pixel is lit.
			if s.idle.Load() && !s.hbActive.Load() {
				continue
			}
			s.mat.Refresh()
		}
	}
}

func (s *Service) drain(sub *bus.Subscription) {
	for {
		select {
		case m := <-sub.Channel():
			s.handle(m)
		default:
			return
		}
	}
}

func (s *Service) wait(ctx context.Context, sub *bus.Subscription, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case m := <-sub.Channel():
		s.handle(m)
	case <-t.C:
	}
}

func (s *Service) handle(m *bus.Message) {
	cmd, ok := m.Payload.(types.Command)
	if !ok {
		println("Warn: sequencer: unexpected payload on", m.Topic[0])
		return
	}
	s.apply(cmd)
}

// apply executes one decoded command. Every command ends with a status
// publication so the host always gets a fresh STATUS line back.
func (s *Service) apply(cmd types.Command) {
	s.touch()
	if cmd.Op != types.OpIdleEnter && s.idle.Load() {
		s.exitIdle()
	}

	switch cmd.Op {
	case types.OpTouch:
		// activity already recorded above

	case types.OpStart:
		s.begin()
	case types.OpPause:
		s.pause()
	case types.OpStop:
		s.stop()
	case types.OpIdleEnter:
		s.enterIdle()
	case types.OpIdleExit:
		// handled by the touch path above

	case types.OpSetKind:
		k := types.PatternKind(cmd.Arg0)
		if !k.Valid() {
			s.fault(errcode.InvalidParams)
			break
		}
		next := s.params
		next.Kind = k
		s.refit(next)
	case types.OpSetSlot:
		next := s.params
		if !next.SlotSet(cmd.Arg0, cmd.Arg1) {
			s.fault(errcode.InvalidParams)
			break
		}
		s.refit(next)
	case types.OpSetStride:
		if cmd.Arg0 < 1 {
			s.fault(errcode.InvalidParams)
			break
		}
		next := s.params
		next.Stride = cmd.Arg0
		s.refit(next)
	case types.OpSetMask:
		if cmd.Arg0 < 0 {
			s.fault(errcode.InvalidParams)
			break
		}
		next := s.params
		next.MaskRadius = cmd.Arg0
		s.refit(next)

	case types.OpSetPixel:
		s.setPixel(cmd.Arg0, cmd.Arg1, types.Color(cmd.Arg2))

	case types.OpCamConfigure:
		s.cam.Configure(cmd.Camera)
	case types.OpCamTest:
		// The wire enabled flag only gates this one pulse; the stored
		// settings are untouched.
		prev := s.cam.Settings()
		cs := prev
		cs.Enabled = cmd.Arg0 != 0
		s.cam.Configure(cs)
		err := s.cam.TestPulse(cmd.Arg1)
		s.cam.Configure(prev)
		if err != nil {
			s.fault(errcode.Of(err))
		}
		s.publishCamera()

	case types.OpEchoOn:
		s.echo = true
	case types.OpEchoOff:
		s.echo = false
	case types.OpExport:
		s.conn.Publish(s.conn.NewMessage(TopicExport, Export{Grid: s.grid}, false))

	default:
		s.fault(errcode.UnknownCommand)
	}
	s.publishStatus()
}

// begin starts from Stopped or resumes from Paused. A start while already
// running is a no-op so a chatty host cannot restart a capture mid-flight.
func (s *Service) begin() {
	if len(s.seq) == 0 {
		s.fault(errcode.InvalidParams)
		return
	}
	switch s.state {
	case types.RunRunning:
	case types.RunPaused:
		s.state = types.RunRunning
	default:
		s.index = 0
		s.cyclesDone = 0
		s.state = types.RunRunning
	}
}

func (s *Service) stop() {
	s.state = types.RunStopped
	s.index = 0
	s.cyclesDone = 0
	s.mat.Clear()
	s.publishLED(0, 0, types.ColorOff, false)
}

func (s *Service) pause() {
	if s.state == types.RunRunning {
		s.state = types.RunPaused
	}
}

// step illuminates the next sequence cell, runs the camera bracket and
// advances. The camera driver owns the pre/post frame delays when enabled;
// with the camera off the step still paces at the configured frame delays
// so the display remains observable.
func (s *Service) step() {
	if s.index >= len(s.seq) {
		s.cyclesDone++
		if s.cfg.Cycles > 0 && s.cyclesDone >= s.cfg.Cycles {
			s.stop()
			if s.selfRun {
				s.selfRun = false
				s.enterIdle()
			}
			return
		}
		s.index = 0
	}
	c := s.seq[s.index]
	s.setPixel(c.X, c.Y, s.cfg.SequenceColor)

	if s.cam.Enabled() {
		s.publishCamera()
		if err := s.cam.Fire(); err != nil {
			s.fault(errcode.Of(err))
		}
		s.publishCamera()
	} else {
		s.sleep(s.cfg.PreFrameDelay)
		s.sleep(s.cfg.PostFrameDelay)
	}
	s.index++
	s.publishStatus()
}

func (s *Service) setPixel(x, y int, c types.Color) {
	if !s.mat.SetPixel(x, y, c) {
		if c.Valid() {
			s.fault(errcode.InvalidCoord)
		} else {
			s.fault(errcode.InvalidColor)
		}
		return
	}
	s.touch()
	if s.echo {
		s.publishLED(x, y, c, c != types.ColorOff)
	}
}

// refit regenerates the pattern for candidate parameters. On failure both
// the previous pattern and the previous parameters stay live so a bad host
// value cannot blank a run.
func (s *Service) refit(next types.PatternParams) {
	g, seq, err := pattern.Generate(next)
	if err != nil {
		s.fault(errcode.Of(err))
		return
	}
	s.params = next
	s.grid, s.seq = g, seq
	if s.state != types.RunStopped {
		s.index = 0
		s.cyclesDone = 0
	}
}

func (s *Service) regenerate() error {
	g, seq, err := pattern.Generate(s.params)
	if err != nil {
		return err
	}
	s.grid, s.seq = g, seq
	return nil
}

func (s *Service) fault(c errcode.Code) {
	s.diag.Record(c)
	println("Error: sequencer:", string(c))
}

// Diag exposes the error counter for the status line.
func (s *Service) Diag() *errcode.Counter { return &s.diag }

func (s *Service) publishStatus() {
	st := types.Status{
		Running:       s.state == types.RunRunning,
		Idle:          s.idle.Load(),
		CameraEnabled: s.cam.Enabled(),
		TriggerActive: s.cam.Status().TriggerActive,
		CameraError:   s.cam.Status().Error,
	}
	if n := len(s.seq); n > 0 {
		st.Progress = float32(s.index) / float32(n)
	}
	s.conn.Publish(s.conn.NewMessage(TopicStatus, st, true))
}

func (s *Service) publishLED(x, y int, c types.Color, on bool) {
	s.conn.Publish(s.conn.NewMessage(TopicLED, types.LEDUpdate{X: x, Y: y, Color: c, On: on}, true))
}

func (s *Service) publishCamera() {
	s.conn.Publish(s.conn.NewMessage(TopicCamera, s.cam.Status(), false))
}
