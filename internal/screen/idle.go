package screen

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dfajtai/good-moode/internal/domain"
)

// Layout of the idle screen on the 128x64 panel.
const (
	clockTop = 12
	dateGap  = 38
)

// IdleConfig tunes the idle screen.
type IdleConfig struct {
	Contrast      int
	BlinkInterval time.Duration
	ShiftInterval time.Duration
}

// IdleScreen renders a centered clock with a blinking colon and the
// date below it. It runs no background task; the state machine calls
// RenderTick from the main loop while idle.
type IdleScreen struct {
	logger  *zap.Logger
	surface domain.Surface
	cfg     IdleConfig
	shift   *Shift
	now     func() time.Time

	blink     bool
	lastBlink time.Time
}

// NewIdleScreen creates the idle clock screen.
func NewIdleScreen(logger *zap.Logger, surface domain.Surface, cfg IdleConfig) *IdleScreen {
	return &IdleScreen{
		logger:  logger,
		surface: surface,
		cfg:     cfg,
		shift:   NewShift(cfg.ShiftInterval),
		now:     time.Now,
	}
}

// RenderTick advances blink and burn-in state and redraws once.
func (s *IdleScreen) RenderTick() {
	n := s.now()
	if s.lastBlink.IsZero() || n.Sub(s.lastBlink) >= s.cfg.BlinkInterval {
		s.blink = !s.blink
		s.lastBlink = n
	}
	s.shift.Advance()
	sx, sy := s.shift.Offset()

	colon := ":"
	if !s.blink {
		colon = " "
	}
	clock := fmt.Sprintf("%02d%s%02d", n.Hour(), colon, n.Minute())
	date := n.Format("2006-01-02")

	width, _ := s.surface.Size()
	s.surface.SetContrast(s.cfg.Contrast)
	s.surface.Frame(func(f domain.Frame) {
		w := f.MeasureText(clock, domain.FontClock)
		x := (width-w)/2 + sx
		y := clockTop + sy
		f.DrawText(x, y, clock, domain.FontClock)

		dw := f.MeasureText(date, domain.FontSmall)
		f.DrawText((width-dw)/2+sx, y+dateGap, date, domain.FontSmall)
	})
}
