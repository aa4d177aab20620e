//go:build !rp2040 && !rp2350

package hw

import (
	"context"
	"os"
	"sync"
)

// StdioUART exposes stdin/stdout as the host serial link so the firmware
// binary doubles as a simulator on the desktop.
type StdioUART struct {
	mu       sync.Mutex
	rx       []byte
	readable chan struct{}
	once     sync.Once
}

func NewStdioUART() *StdioUART {
	u := &StdioUART{readable: make(chan struct{}, 1)}
	u.once.Do(func() { go u.pump() })
	return u
}

func (u *StdioUART) pump() {
	buf := make([]byte, 256)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			u.mu.Lock()
			u.rx = append(u.rx, buf[:n]...)
			u.mu.Unlock()
			select {
			case u.readable <- struct{}{}:
			default:
			}
		}
		if err != nil {
			return
		}
	}
}

func (u *StdioUART) WriteByte(b byte) error {
	_, err := os.Stdout.Write([]byte{b})
	return err
}

func (u *StdioUART) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

func (u *StdioUART) Buffered() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.rx)
}

func (u *StdioUART) Read(p []byte) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := copy(p, u.rx)
	u.rx = u.rx[n:]
	if len(u.rx) > 0 {
		// Stay readable while bytes are pending.
		select {
		case u.readable <- struct{}{}:
		default:
		}
	}
	return n, nil
}

func (u *StdioUART) Readable() <-chan struct{} { return u.readable }

func (u *StdioUART) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
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

// DefaultSerial is stdio on non-MCU builds.
func DefaultSerial() UARTPort { return NewStdioUART() }
