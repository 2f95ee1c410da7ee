package logic

import (
	"strconv"
	"time"
)

// PreviousSentinel marks a previous-count record that has not been
// initialized since the last enable. The current count becomes the baseline.
const PreviousSentinel = "load"

// ComputeDelta returns the additions and deletions between previous and current.
// At most one of the two is nonzero.
func ComputeDelta(previous, current int) LineDelta {
	if current >= previous {
		return LineDelta{Additions: current - previous}
	}
	return LineDelta{Deletions: previous - current}
}

// ParsePrevious interprets a stored previous-count value.
// Returns ok=false when the record is absent, the sentinel, unparsable or
// negative; callers then treat previous as equal to current.
func ParsePrevious(raw string, present bool) (int, bool) {
	if !present || raw == PreviousSentinel {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Baseline resolves the previous count to diff against.
func Baseline(raw string, present bool, current int) int {
	if prev, ok := ParsePrevious(raw, present); ok {
		return prev
	}
	return current
}

// IsActive reports whether the last interaction is recent enough for a tick
// to count as activity. seen=false means no interaction was ever recorded.
// A negative since (the clock moved backwards) counts as inactive.
func IsActive(since time.Duration, seen bool, threshold time.Duration) bool {
	return seen && since >= 0 && since <= threshold
}

// UnixSeconds converts t to fractional unix seconds at millisecond precision.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixMilli()) / 1000
}
