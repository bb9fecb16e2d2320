package util

import "time"

// Stopwatch measures how long a unit of request work took.
type Stopwatch struct {
	start time.Time
	now   func() time.Time
}

// StartStopwatch creates a stopwatch starting at the current time.
func StartStopwatch() Stopwatch {
	return Stopwatch{start: time.Now(), now: time.Now}
}

// Elapsed returns the time since start, or zero for an unstarted stopwatch.
func (s Stopwatch) Elapsed() time.Duration {
	if s.start.IsZero() {
		return 0
	}
	now := s.now
	if now == nil {
		now = time.Now
	}
	return now().Sub(s.start)
}

// ElapsedMs returns the elapsed milliseconds since start.
func (s Stopwatch) ElapsedMs() int64 {
	return s.Elapsed().Milliseconds()
}
