package dispatch

import (
	"io"
	"time"
)

// stallGuard wraps an upstream body and calls onStall when no byte has been
// read for timeout. Every successful read rearms the timer; a zero timeout
// disables the guard.
type stallGuard struct {
	reader  io.Reader
	timeout time.Duration
	timer   *time.Timer
}

func newStallGuard(reader io.Reader, timeout time.Duration, onStall func()) *stallGuard {
	guard := &stallGuard{reader: reader, timeout: timeout}
	if timeout > 0 {
		guard.timer = time.AfterFunc(timeout, onStall)
	}
	return guard
}

func (g *stallGuard) Read(p []byte) (int, error) {
	n, err := g.reader.Read(p)
	if n > 0 && g.timer != nil {
		g.timer.Reset(g.timeout)
	}
	return n, err
}

// Stop disarms the timer. It does not close the underlying reader.
func (g *stallGuard) Stop() {
	if g.timer != nil {
		g.timer.Stop()
	}
}
