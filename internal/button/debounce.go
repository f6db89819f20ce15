package button

import (
	"time"

	"github.com/dfajtai/good-moode/internal/domain"
)

// debouncer turns raw line samples into button events. The debounce is
// a refractory period, not a majority filter: a falling edge is
// accepted only when at least the debounce window has elapsed since the
// last accepted press; everything else within the window is discarded.
type debouncer struct {
	debounce time.Duration
	hold     time.Duration
	now      func() time.Time

	lastLevel bool
	lastPress time.Time
	pressedAt time.Time
	holdFired bool
}

func newDebouncer(debounce, hold time.Duration) *debouncer {
	return &debouncer{
		debounce: debounce,
		hold:     hold,
		now:      time.Now,
		// The line idles high (pulled up), so a low first sample is a
		// press, not noise.
		lastLevel: true,
	}
}

// observe processes one line sample and returns the event it confirms,
// if any. At most one event per sample.
func (d *debouncer) observe(level bool) (domain.ButtonEvent, bool) {
	prev := d.lastLevel
	d.lastLevel = level

	if level {
		// Release disarms hold detection until the next press.
		d.pressedAt = time.Time{}
		d.holdFired = false
		return 0, false
	}

	if prev {
		// Falling edge.
		now := d.now()
		if d.lastPress.IsZero() || now.Sub(d.lastPress) >= d.debounce {
			d.lastPress = now
			d.pressedAt = now
			d.holdFired = false
			return domain.ButtonPress, true
		}
		return 0, false
	}

	// Line held low without an intervening release.
	if d.hold > 0 && !d.holdFired && !d.pressedAt.IsZero() && d.now().Sub(d.pressedAt) >= d.hold {
		d.holdFired = true
		return domain.ButtonHold, true
	}
	return 0, false
}
