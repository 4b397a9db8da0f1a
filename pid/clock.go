package pid

import "time"

// Clock yields monotonic time in microseconds. The controller only
// ever subtracts two readings, so the epoch is irrelevant; the counter
// must not run backward between samples.
type Clock func() int64

// systemClock counts microseconds since construction using the
// runtime's monotonic reading of time.Since.
func systemClock() Clock {
	start := time.Now()
	return func() int64 {
		return time.Since(start).Microseconds()
	}
}

// ManualClock is a Clock driven explicitly by the caller. Simulated
// loops and tests advance it by the sample period instead of waiting
// out real time.
type ManualClock struct {
	ticks int64
}

// NewManualClock returns a manual clock starting at one microsecond,
// so the first reading is already a valid timestamp.
func NewManualClock() *ManualClock {
	return &ManualClock{ticks: 1}
}

// Advance moves the clock forward. Negative durations are ignored;
// the clock is monotonic.
func (m *ManualClock) Advance(d time.Duration) {
	if d > 0 {
		m.ticks += d.Microseconds()
	}
}

// Now returns the current tick count in microseconds.
func (m *ManualClock) Now() int64 {
	return m.ticks
}
