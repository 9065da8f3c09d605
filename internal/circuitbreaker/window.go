package circuitbreaker

import (
	"time"
)

type windowEntry struct {
	at     time.Time
	failed bool
}

// SlidingWindow keeps the timestamps and outcomes of recent requests so the
// breaker can compute a failure rate over the last monitoring period. It is
// not safe for concurrent use; the owning breaker serializes access.
type SlidingWindow struct {
	period  time.Duration
	entries []windowEntry
}

func NewSlidingWindow(period time.Duration) *SlidingWindow {
	return &SlidingWindow{
		period: period,
	}
}

// Record appends an outcome observed at the given time.
func (w *SlidingWindow) Record(at time.Time, failed bool) {
	w.entries = append(w.entries, windowEntry{at: at, failed: failed})
}

// Prune drops every entry older than now minus the monitoring period.
func (w *SlidingWindow) Prune(now time.Time) {
	cutoff := now.Add(-w.period)

	keep := 0
	for keep < len(w.entries) && !w.entries[keep].at.After(cutoff) {
		keep++
	}

	if keep > 0 {
		w.entries = append(w.entries[:0], w.entries[keep:]...)
	}
}

// FailureRate returns failures divided by total requests within the window.
// An empty window has a rate of 0.
func (w *SlidingWindow) FailureRate(now time.Time) float64 {
	w.Prune(now)

	if len(w.entries) == 0 {
		return 0
	}

	failed := 0
	for _, entry := range w.entries {
		if entry.failed {
			failed++
		}
	}

	return float64(failed) / float64(len(w.entries))
}

// Size returns the number of requests currently inside the window.
func (w *SlidingWindow) Size(now time.Time) int {
	w.Prune(now)
	return len(w.entries)
}

func (w *SlidingWindow) reset() {
	w.entries = w.entries[:0]
}
