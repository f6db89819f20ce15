package screen

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dfajtai/good-moode/internal/domain"
	"github.com/dfajtai/good-moode/internal/icy"
)

// Layout of the playing screen on the 128x64 panel.
const (
	artistY     = 0
	songY       = 18
	volLabelY   = 36
	barX        = 30
	barY        = 40
	barHeight   = 3
	barMaxWidth = 90
	dateY       = 50
)

// defaultVolumePercent seeds the bar before the first volume query.
const defaultVolumePercent = 50

// MetadataSource yields title updates from the stream. Satisfied by
// *icy.Reader.
type MetadataSource interface {
	Reset()
	Poll(ctx context.Context) icy.Update
}

// PlayingConfig tunes the now-playing screen.
type PlayingConfig struct {
	// StationName is displayed until the first metadata block arrives.
	StationName   string
	Interval      time.Duration
	Contrast      int
	ScrollStep    int
	ScrollGap     int
	ShiftInterval time.Duration
}

// PlayingScreen shows scrolling artist/song lines, a volume bar and the
// date. It owns a metadata source and runs its own background loop
// while a stream is active; the loop's lifecycle belongs to the state
// machine, not to this type.
//
// The render state is touched only by the background loop. The
// renderEnabled flag is the one cross-goroutine bit: the state machine
// clears it before cancelling the loop so a task racing slightly past
// the transition draws nothing.
type PlayingScreen struct {
	logger  *zap.Logger
	surface domain.Surface
	source  MetadataSource
	volume  domain.VolumeSource
	cfg     PlayingConfig
	shift   *Shift
	now     func() time.Time

	renderEnabled atomic.Bool

	title         string
	track         domain.TrackDisplay
	offsetArtist  int
	offsetSong    int
	volumePercent int
}

// NewPlayingScreen creates the now-playing screen.
func NewPlayingScreen(
	logger *zap.Logger,
	surface domain.Surface,
	source MetadataSource,
	volume domain.VolumeSource,
	cfg PlayingConfig,
) *PlayingScreen {
	return &PlayingScreen{
		logger:        logger,
		surface:       surface,
		source:        source,
		volume:        volume,
		cfg:           cfg,
		shift:         NewShift(cfg.ShiftInterval),
		now:           time.Now,
		title:         cfg.StationName,
		track:         domain.SplitTitle(cfg.StationName),
		volumePercent: defaultVolumePercent,
	}
}

// SetRenderEnabled flips the render gate. While false, RenderTick is a
// no-op, which lets one long-lived instance be reused across
// idle/playing cycles.
func (s *PlayingScreen) SetRenderEnabled(enabled bool) {
	s.renderEnabled.Store(enabled)
}

// RenderEnabled reports the current gate state.
func (s *PlayingScreen) RenderEnabled() bool {
	return s.renderEnabled.Load()
}

// Run is the background loop: poll metadata, advance scroll state,
// refresh volume, redraw. It returns when ctx is cancelled. At most one
// Run per screen may be active; the state machine enforces that.
func (s *PlayingScreen) Run(ctx context.Context) {
	s.logger.Info("now-playing loop started")
	defer s.logger.Info("now-playing loop stopped")

	// The remembered metadata block may be stale after a pause.
	s.source.Reset()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *PlayingScreen) tick(ctx context.Context) {
	if upd := s.source.Poll(ctx); upd.Changed {
		s.updateTitle(upd.Title)
	}
	s.advance()
	s.volumePercent = s.volume.Volume(ctx)
	s.RenderTick()
}

// updateTitle applies a changed title and resets the scroll offsets.
// Only a real change resets them; "no change" polls and volume-only
// updates never do.
func (s *PlayingScreen) updateTitle(title string) {
	if title == "" || title == s.title {
		return
	}
	s.logger.Info("track changed", zap.String("title", title))
	s.title = title
	s.track = domain.SplitTitle(title)
	s.offsetArtist = 0
	s.offsetSong = 0
}

// advance moves both scroll offsets one step. Offsets are unbounded;
// drawScrolled reduces them modulo the wrap period.
func (s *PlayingScreen) advance() {
	s.offsetArtist += s.cfg.ScrollStep
	s.offsetSong += s.cfg.ScrollStep
}

// RenderTick redraws once. No-op while rendering is disabled; no
// blocking I/O on this path.
func (s *PlayingScreen) RenderTick() {
	if !s.renderEnabled.Load() {
		return
	}
	s.shift.Advance()
	sx, sy := s.shift.Offset()
	width, _ := s.surface.Size()
	stamp := s.now().Format("2006-01-02 15:04")

	s.surface.SetContrast(s.cfg.Contrast)
	s.surface.Frame(func(f domain.Frame) {
		if s.track.Artist != "" {
			drawScrolled(f, s.track.Artist, sx, artistY+sy, width, s.offsetArtist, s.cfg.ScrollGap, domain.FontBig)
		}
		if s.track.Song != "" {
			drawScrolled(f, s.track.Song, sx, songY+sy, width, s.offsetSong, s.cfg.ScrollGap, domain.FontBig)
		}

		f.DrawText(sx, volLabelY+sy, "VOL", domain.FontSmall)
		f.FillRect(barX+sx, barY+sy, barWidth(s.volumePercent), barHeight)

		f.DrawText(sx, dateY+sy, stamp, domain.FontSmall)
	})
}

// barWidth maps a volume percent to bar pixels, clamped to the bar.
func barWidth(percent int) int {
	w := int(math.Round(float64(barMaxWidth) * float64(percent) / 100))
	if w < 0 {
		return 0
	}
	if w > barMaxWidth {
		return barMaxWidth
	}
	return w
}
