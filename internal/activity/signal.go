// Package activity holds the single timestamp of the most recent user
// interaction. Event callbacks write it; the scheduler reads it each tick.
package activity

import (
	"sync/atomic"
	"time"
)

// Signal is a last-write-wins cell holding the time of the latest interaction.
// Safe for concurrent use: callbacks from MQTT and filesystem goroutines may
// call Record while the scheduler calls Since.
type Signal struct {
	now  func() time.Time
	last atomic.Int64 // unix nanoseconds; 0 = never
}

// NewSignal creates a Signal reading the current time from now.
func NewSignal(now func() time.Time) *Signal {
	if now == nil {
		now = time.Now
	}
	return &Signal{now: now}
}

// Record stamps the signal with the current time.
func (s *Signal) Record() {
	s.last.Store(s.now().UnixNano())
}

// Since returns the time elapsed since the last recorded event.
// Returns ok=false if no event has ever been recorded.
func (s *Signal) Since() (time.Duration, bool) {
	last, ok := s.Last()
	if !ok {
		return 0, false
	}
	return s.now().Sub(last), true
}

// Last returns the time of the last recorded event.
func (s *Signal) Last() (time.Time, bool) {
	ns := s.last.Load()
	if ns == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, ns), true
}

// Restore seeds the signal with a previously persisted timestamp.
// A restored value never overrides a newer recorded event, and a value later
// than now is ignored.
func (s *Signal) Restore(t time.Time) {
	if t.IsZero() || t.After(s.now()) {
		return
	}
	ns := t.UnixNano()
	for {
		cur := s.last.Load()
		if cur >= ns {
			return
		}
		if s.last.CompareAndSwap(cur, ns) {
			return
		}
	}
}
