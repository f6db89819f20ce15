package domain

import "context"

// StatusSource reports the current playback state of the external player.
// Implementations never return an error: any failure (timeout, non-zero
// exit, malformed output) degrades to StateIdle.
type StatusSource interface {
	State(ctx context.Context) PlayerState
}

// VolumeSource returns the current volume percent, clamped to 0..100.
// Implementations degrade to a default value on any failure.
type VolumeSource interface {
	Volume(ctx context.Context) int
}

// Toggler toggles playback on the external player. Fire-and-forget:
// errors are logged by the implementation, never propagated.
type Toggler interface {
	Toggle(ctx context.Context)
}

// FontSize selects one of the faces loaded by the rendering surface.
type FontSize int

const (
	// FontSmall is the face for the date line and labels.
	FontSmall FontSize = iota
	// FontBig is the face for the scrolling artist/song lines.
	FontBig
	// FontClock is the large face for the idle clock.
	FontClock
)

// Frame is a single scoped drawing pass against the surface. A Frame is
// only valid inside the callback passed to Surface.Frame; the surface
// flushes it when the callback returns, on every exit path.
//
// Coordinates are top-left based pixels; DrawText's y is the top of the
// glyph box, not the baseline.
type Frame interface {
	DrawText(x, y int, text string, size FontSize)
	MeasureText(text string, size FontSize) int
	FillRect(x, y, w, h int)
}

// Surface is the monochrome display the screens draw on. The state
// machine guarantees a single logical writer at any instant; surface
// implementations additionally serialize Frame calls so the guarantee
// holds under goroutine interleaving.
type Surface interface {
	Size() (width, height int)
	SetContrast(level int)
	Frame(draw func(Frame))
}

// Screen renders one full frame per tick. RenderTick must not block on
// I/O; drawing is a fast synchronous call against the surface.
type Screen interface {
	RenderTick()
}
