package clock

import (
	"sync/atomic"
	"time"
)

// Clock is a monotonic millisecond counter that wraps at 2^32.
type Clock interface {
	NowMillis() uint32
}

var (
	_ Clock = (*Monotonic)(nil)
	_ Clock = (*Manual)(nil)
)

// Monotonic counts milliseconds since it was created, like millis() on a board.
type Monotonic struct {
	start time.Time
}

// NewMonotonic starts a clock at zero.
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

// NowMillis returns the milliseconds elapsed since creation, truncated to 32 bits.
func (m *Monotonic) NowMillis() uint32 {
	// time.Since uses the monotonic reading, so wall clock changes do not affect it.
	return uint32(time.Since(m.start).Milliseconds())
}

// Manual is a clock advanced explicitly, for tests and simulations.
type Manual struct {
	now atomic.Uint32
}

// NewManual creates a manual clock reading start.
func NewManual(start uint32) *Manual {
	m := &Manual{}
	m.now.Store(start)
	return m
}

// NowMillis returns the current reading.
func (m *Manual) NowMillis() uint32 {
	return m.now.Load()
}

// Advance moves the clock forward by d, wrapping at 2^32.
func (m *Manual) Advance(d time.Duration) {
	m.now.Add(uint32(d.Milliseconds()))
}
