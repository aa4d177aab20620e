package sequencer

import (
	"ledmatrix-go/types"
	"ledmatrix-go/x/timex"
)

// Idle supervision. With no host activity for cfg.IdleTimeout the panel is
// blanked and only a single heartbeat pixel blinks at the matrix center so a
// glance still tells the device is alive. Any received byte or command wakes
// it back up.

func (s *Service) touch() {
	s.activityMs = timex.NowMs()
}

func (s *Service) enterIdle() {
	if s.idle.Load() {
		return
	}
	if s.state == types.RunRunning {
		s.pause()
	}
	s.mat.Clear()
	s.hbActive.Store(false)
	s.lastBeatMs = timex.NowMs()
	s.idle.Store(true)
	println("Info: sequencer: entering idle")
	s.publishStatus()
}

func (s *Service) exitIdle() {
	if !s.idle.Load() {
		return
	}
	s.idle.Store(false)
	s.hbActive.Store(false)
	s.touch()
	// Resync the hardware with the driver's pixel state.
	s.mat.ForceRedraw()
	println("Info: sequencer: leaving idle")
	s.publishStatus()
}

// idleTick runs the heartbeat. The pixel lights once per HeartbeatInterval
// and clears after HeartbeatDuration; the refresh goroutine only scans the
// panel while the pixel is lit.
func (s *Service) idleTick() {
	now := timex.NowMs()
	if s.hbActive.Load() {
		if timex.Exceeded(now, s.beatOnMs, s.cfg.HeartbeatDuration) {
			s.mat.Clear()
			s.hbActive.Store(false)
		}
		return
	}
	if timex.Exceeded(now, s.lastBeatMs, s.cfg.HeartbeatInterval) {
		if s.mat.SetPixel(types.CenterX, types.CenterY, types.ColorGreen) {
			s.beatOnMs = now
			s.lastBeatMs = now
			s.hbActive.Store(true)
		}
	}
}
