package domain

import "strings"

// PlayerState is the sampled playback state of the external player.
// It is polled, never pushed: the state machine compares consecutive
// samples to detect transitions.
type PlayerState int

const (
	// StateIdle indicates the player is stopped or paused, or that its
	// state could not be determined. Idle is always the safe default.
	StateIdle PlayerState = iota
	// StatePlaying indicates a stream is actively playing.
	StatePlaying
)

func (s PlayerState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	default:
		return "idle"
	}
}

// ButtonEvent is a debounce-confirmed physical button event.
type ButtonEvent int

const (
	// ButtonPress is a confirmed falling edge on the button line.
	ButtonPress ButtonEvent = iota
	// ButtonHold fires once when the line stays active past the hold
	// threshold without an intervening release.
	ButtonHold
)

func (e ButtonEvent) String() string {
	switch e {
	case ButtonHold:
		return "hold"
	default:
		return "press"
	}
}

// TrackDisplay is the artist/song pair derived from a raw stream title.
// Song is empty when the title carries no recognizable separator.
type TrackDisplay struct {
	Artist string
	Song   string
}

// Separators tried in priority order; the first listed separator that
// occurs anywhere in the title wins, split at its first occurrence.
var titleSeparators = []string{"_-_", " - "}

// SplitTitle derives the displayed artist/song pair from a stream title.
// Pure function, no hidden state.
func SplitTitle(title string) TrackDisplay {
	for _, sep := range titleSeparators {
		if i := strings.Index(title, sep); i >= 0 {
			return TrackDisplay{
				Artist: strings.TrimSpace(title[:i]),
				Song:   strings.TrimSpace(title[i+len(sep):]),
			}
		}
	}
	return TrackDisplay{Artist: strings.TrimSpace(title)}
}
