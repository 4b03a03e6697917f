// Package ratelimit bounds how many analyses one caller may trigger inside
// a rolling window. It keeps a per-caller log of admission timestamps: old
// entries are trimmed on every check and the current timestamp is appended
// only when the request is admitted, so capacity frees up incrementally as
// the oldest admissions age out.
package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow is a mutex-guarded per-caller sliding-window limiter.
type SlidingWindow struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	callers map[string][]time.Time

	// now is swappable for window-expiry tests.
	now func() time.Time
}

// New creates a SlidingWindow admitting at most max requests per caller
// within the window.
func New(max int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		max:     max,
		window:  window,
		callers: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Admit reports whether callerID may run another analysis now, recording
// the admission when it may.
func (s *SlidingWindow) Admit(callerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-s.window)

	kept := s.callers[callerID][:0]
	for _, t := range s.callers[callerID] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= s.max {
		s.callers[callerID] = kept
		return false
	}

	s.callers[callerID] = append(kept, now)
	return true
}
