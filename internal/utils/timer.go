package utils

import "time"

// Timer measures elapsed wall-clock time between a start and stop event.
// Create one with [NewTimer], which starts the timer immediately.
type Timer struct {
	startTime time.Time
	duration  time.Duration
}

// NewTimer creates a new Timer and immediately starts it.
func NewTimer() *Timer {
	return &Timer{startTime: time.Now()}
}

// Stop records the elapsed time since construction and returns it.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.startTime)
	return t.duration
}

// GetDuration returns the duration captured by the most recent call to
// [Timer.Stop]. If Stop has not been called yet, it returns zero.
func (t *Timer) GetDuration() time.Duration {
	return t.duration
}
