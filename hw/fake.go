package hw

import (
	"context"
	"sync"
)

// FakePin implements GPIOPin in memory. Tests use the write counters to
// assert on strobe activity without modelling the panel electrically.
type FakePin struct {
	mu      sync.Mutex
	number  int
	level   bool
	modeOut bool

	Writes  int // Set calls
	Toggles int
}

func NewFakePin(n int) *FakePin { return &FakePin{number: n} }

func (p *FakePin) ConfigureInput(_ Pull) error {
	p.mu.Lock()
	p.modeOut = false
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.modeOut = true
	p.level = initial
	p.mu.Unlock()
	return nil
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	p.level = level
	p.Writes++
	p.mu.Unlock()
}

func (p *FakePin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *FakePin) Toggle() {
	p.mu.Lock()
	p.level = !p.level
	p.Toggles++
	p.mu.Unlock()
}

func (p *FakePin) Number() int { return p.number }

// SetLevel drives the pin from the test side without counting as a write.
func (p *FakePin) SetLevel(level bool) {
	p.mu.Lock()
	p.level = level
	p.mu.Unlock()
}

// ResetCounters clears the write/toggle counters.
func (p *FakePin) ResetCounters() {
	p.mu.Lock()
	p.Writes, p.Toggles = 0, 0
	p.mu.Unlock()
}

// FakePins builds a complete fake pin set with distinct numbers.
func FakePins() (Pins, []*FakePin) {
	all := make([]*FakePin, 0, 16)
	next := 0
	mk := func() *FakePin {
		p := NewFakePin(next)
		next++
		all = append(all, p)
		return p
	}
	pins := Pins{
		Panel: PanelPins{
			BL: mk(), CK: mk(), LA: mk(),
			A:  [5]GPIOPin{mk(), mk(), mk(), mk(), mk()},
			R0: mk(), R1: mk(), G0: mk(), G1: mk(), B0: mk(), B1: mk(),
		},
		Trigger: mk(),
	}
	return pins, all
}

// FakeUART is an in-memory duplex port. The test side writes host bytes with
// HostWrite and reads device output from HostRead.
type FakeUART struct {
	mu       sync.Mutex
	rx       []byte // host -> device
	tx       []byte // device -> host
	readable chan struct{}
}

func NewFakeUART() *FakeUART {
	return &FakeUART{readable: make(chan struct{}, 1)}
}

func (u *FakeUART) WriteByte(b byte) error {
	u.mu.Lock()
	u.tx = append(u.tx, b)
	u.mu.Unlock()
	return nil
}

func (u *FakeUART) Write(p []byte) (int, error) {
	u.mu.Lock()
	u.tx = append(u.tx, p...)
	u.mu.Unlock()
	return len(p), nil
}

func (u *FakeUART) Buffered() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.rx)
}

func (u *FakeUART) Read(p []byte) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := copy(p, u.rx)
	u.rx = u.rx[n:]
	if len(u.rx) > 0 {
		// Like a real FIFO, stay readable while bytes are pending.
		select {
		case u.readable <- struct{}{}:
		default:
		}
	}
	return n, nil
}

func (u *FakeUART) Readable() <-chan struct{} { return u.readable }

func (u *FakeUART) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	for {
		if n, _ := u.Read(p); n > 0 {
			return n, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-u.readable:
		}
	}
}

// HostWrite feeds bytes into the device's receive side.
func (u *FakeUART) HostWrite(p []byte) {
	u.mu.Lock()
	u.rx = append(u.rx, p...)
	u.mu.Unlock()
	select {
	case u.readable <- struct{}{}:
	default:
	}
}

// HostRead drains everything the device transmitted so far.
func (u *FakeUART) HostRead() []byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := u.tx
	u.tx = nil
	return out
}
