package timex

import "time"

// The device compares wall-clock intervals on a millisecond counter that may
// wrap on long uptimes. All elapsed checks are subtraction-based so they stay
// correct across the wrap.

var start = time.Now()

// NowMs returns milliseconds since process start. time.Since reads the
// monotonic clock, so wall-clock steps never move the counter.
func NowMs() uint32 { return uint32(time.Since(start).Milliseconds()) }

// ElapsedMs returns now-since on the wrapping counter.
func ElapsedMs(now, since uint32) uint32 { return now - since }

// Exceeded reports whether at least d has passed between since and now.
func Exceeded(now, since uint32, d time.Duration) bool {
	return ElapsedMs(now, since) >= uint32(d.Milliseconds())
}
