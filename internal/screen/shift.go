// Package screen holds the two screen controllers: the idle clock and
// the scrolling now-playing screen. Each owns its render state; the
// state machine decides which one may touch the surface.
package screen

import "time"

// Shift is the slow anti burn-in offset: x and y each cycle 0..3,
// advancing at most once per interval. It is applied to every drawn
// element and never resets.
type Shift struct {
	interval time.Duration
	now      func() time.Time

	x, y int
	last time.Time
}

// NewShift creates a shift advancing once per interval.
func NewShift(interval time.Duration) *Shift {
	return &Shift{interval: interval, now: time.Now}
}

// Advance moves the shift one step when the interval has elapsed.
func (s *Shift) Advance() {
	n := s.now()
	if s.last.IsZero() {
		s.last = n
		return
	}
	if n.Sub(s.last) >= s.interval {
		s.x = (s.x + 1) % 4
		s.y = (s.y + 1) % 4
		s.last = n
	}
}

// Offset returns the current pixel offset.
func (s *Shift) Offset() (int, int) {
	return s.x, s.y
}
