package sim

import "time"

// Stopwatch converts host clock readings into acquisition elapsed time.
// Pausing and resuming rebases the reference instant, so elapsed continues
// from its last value instead of jumping by the paused interval.
type Stopwatch struct {
	reference time.Time
	pausedAt  time.Time
	paused    bool
}

// Start resets the stopwatch to zero at now.
func (s *Stopwatch) Start(now time.Time) {
	s.reference = now
	s.paused = false
}

// Pause freezes elapsed time at now.
func (s *Stopwatch) Pause(now time.Time) {
	if s.paused {
		return
	}
	s.pausedAt = now
	s.paused = true
}

// Resume continues counting from the frozen value.
func (s *Stopwatch) Resume(now time.Time) {
	if !s.paused {
		return
	}
	s.reference = s.reference.Add(now.Sub(s.pausedAt))
	s.paused = false
}

// Elapsed returns the seconds counted since Start, excluding paused intervals.
func (s *Stopwatch) Elapsed(now time.Time) float64 {
	if s.paused {
		now = s.pausedAt
	}
	return now.Sub(s.reference).Seconds()
}
