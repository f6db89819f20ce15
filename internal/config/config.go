package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full daemon configuration. Defaults mirror the appliance
// the daemon was built for: a 128x64 SH1106/SSD1306 OLED on i2c, a push
// button on GPIO22 and moOde's MPD reachable through mpc.
type Config struct {
	Stream  StreamConfig  `koanf:"stream"`
	Player  PlayerConfig  `koanf:"player"`
	Button  ButtonConfig  `koanf:"button"`
	Display DisplayConfig `koanf:"display"`
	UI      UIConfig      `koanf:"ui"`
	Log     LogConfig     `koanf:"log"`
}

// StreamConfig configures the ICY metadata reader.
type StreamConfig struct {
	URL          string        `koanf:"url"`
	PollInterval time.Duration `koanf:"poll_interval"`
	// Timeout is the hard per-poll network bound. It must stay below
	// PollInterval so one stalled read cannot starve the render cadence.
	Timeout time.Duration `koanf:"timeout"`
}

// PlayerConfig configures how the external player is queried and driven.
type PlayerConfig struct {
	// Source selects the status backend: "mpc" (default) or "mpris".
	Source       string        `koanf:"source"`
	PollInterval time.Duration `koanf:"poll_interval"`
	// JoinTimeout bounds how long a transition to idle waits for the
	// playing-screen task to finish after cancellation.
	JoinTimeout time.Duration `koanf:"join_timeout"`
	// VolumeURL is the moOde web API endpoint used as a volume fallback
	// when mpc yields nothing.
	VolumeURL string `koanf:"volume_url"`
}

// ButtonConfig configures the physical play/pause button.
type ButtonConfig struct {
	Enabled        bool          `koanf:"enabled"`
	Pin            string        `koanf:"pin"`
	SampleInterval time.Duration `koanf:"sample_interval"`
	Debounce       time.Duration `koanf:"debounce"`
	// Hold <= 0 disables long-hold detection.
	Hold time.Duration `koanf:"hold"`
}

// DisplayConfig configures the OLED binding.
type DisplayConfig struct {
	// Driver selects the surface: "ssd1306" or "none" (in-memory, for
	// development off the appliance).
	Driver string `koanf:"driver"`
	I2CBus string `koanf:"i2c_bus"`
	// Font paths; empty or unloadable paths fall back to the built-in
	// fixed-width face.
	FontBig         string `koanf:"font_big"`
	FontSmall       string `koanf:"font_small"`
	ContrastIdle    int    `koanf:"contrast_idle"`
	ContrastPlaying int    `koanf:"contrast_playing"`
}

// UIConfig tunes the on-screen behaviour.
type UIConfig struct {
	// StationName is shown on the playing screen before the first
	// metadata block arrives.
	StationName   string        `koanf:"station_name"`
	ScrollStep    int           `koanf:"scroll_step"`
	ScrollGap     int           `koanf:"scroll_gap"`
	ShiftInterval time.Duration `koanf:"shift_interval"`
	BlinkInterval time.Duration `koanf:"blink_interval"`
}

// LogConfig configures logging.
type LogConfig struct {
	Development bool `koanf:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Stream: StreamConfig{
			URL:          "http://stream.radiomost.hu:8200/live.mp3",
			PollInterval: 200 * time.Millisecond,
			Timeout:      150 * time.Millisecond,
		},
		Player: PlayerConfig{
			Source:       "mpc",
			PollInterval: 200 * time.Millisecond,
			JoinTimeout:  500 * time.Millisecond,
			VolumeURL:    "http://localhost/command/?cmd=get_volume",
		},
		Button: ButtonConfig{
			Enabled:        false,
			Pin:            "GPIO22",
			SampleInterval: 10 * time.Millisecond,
			Debounce:       50 * time.Millisecond,
			Hold:           800 * time.Millisecond,
		},
		Display: DisplayConfig{
			Driver:          "none",
			I2CBus:          "",
			ContrastIdle:    40,
			ContrastPlaying: 180,
		},
		UI: UIConfig{
			StationName:   "Radio Most Kaposvár",
			ScrollStep:    2,
			ScrollGap:     20,
			ShiftInterval: 60 * time.Second,
			BlinkInterval: time.Second,
		},
	}
}

// Load reads configuration files over the defaults. Candidate paths are
// tried in order, last one wins; a missing file is not an error. A path
// named in the GOODMOODE_CONFIG environment variable overrides all others.
func Load() (*Config, error) {
	k := koanf.New(".")

	for _, path := range configPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, err
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "good-moode", "config.toml"))
	}
	paths = append(paths, "config.toml")
	if explicit := os.Getenv("GOODMOODE_CONFIG"); explicit != "" {
		paths = append(paths, explicit)
	}
	return paths
}
