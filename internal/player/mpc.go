package player

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dfajtai/good-moode/internal/domain"
)

const (
	statusTimeout = 500 * time.Millisecond
	volumeTimeout = time.Second
	toggleTimeout = 2 * time.Second

	playingMarker = "[playing]"

	// DefaultVolume is reported when neither mpc nor the moOde web API
	// yields a usable value.
	DefaultVolume = 50
)

var volumeRe = regexp.MustCompile(`volume:\s*(\d+)%`)

// MPC queries and drives MPD through the mpc command line client, with
// the moOde web API as a volume fallback. It implements StatusSource,
// VolumeSource and Toggler; none of its methods ever surface an error.
type MPC struct {
	logger    *zap.Logger
	runner    Runner
	volumeURL string
	client    *http.Client
}

// NewMPC creates an MPC client. volumeURL may be empty to disable the
// web API fallback.
func NewMPC(logger *zap.Logger, runner Runner, volumeURL string) *MPC {
	return &MPC{
		logger:    logger,
		runner:    runner,
		volumeURL: volumeURL,
		client:    &http.Client{Timeout: volumeTimeout},
	}
}

// State samples the player state. Any failure degrades to StateIdle.
func (m *MPC) State(ctx context.Context) domain.PlayerState {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	out, err := m.runner.Run(ctx, "mpc", "status")
	if err != nil {
		m.logger.Debug("mpc status failed", zap.Error(err))
		return domain.StateIdle
	}
	if strings.Contains(string(out), playingMarker) {
		return domain.StatePlaying
	}
	return domain.StateIdle
}

// Volume reads the current volume percent, clamped to 0..100. It tries
// mpc first, then the moOde web API, then gives up with DefaultVolume.
func (m *MPC) Volume(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, volumeTimeout)
	defer cancel()

	if out, err := m.runner.Run(ctx, "mpc"); err == nil {
		if match := volumeRe.FindSubmatch(out); match != nil {
			if v, err := strconv.Atoi(string(match[1])); err == nil {
				return clampPercent(v)
			}
		}
	} else {
		m.logger.Debug("mpc volume query failed", zap.Error(err))
	}

	if v, err := m.webVolume(ctx); err == nil {
		return clampPercent(v)
	} else if m.volumeURL != "" {
		m.logger.Debug("moode volume fallback failed", zap.Error(err))
	}
	return DefaultVolume
}

// Toggle flips play/pause. Fire-and-forget: failures are logged only.
func (m *MPC) Toggle(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, toggleTimeout)
	defer cancel()

	out, err := m.runner.Run(ctx, "mpc", "toggle")
	if err != nil {
		m.logger.Warn("mpc toggle failed",
			zap.Error(err),
			zap.ByteString("output", out))
		return
	}
	m.logger.Info("playback toggled")
}

// webVolume asks the moOde web API, which answers {"volume": N} where N
// may be a number or a quoted string depending on the moOde release.
func (m *MPC) webVolume(ctx context.Context) (int, error) {
	if m.volumeURL == "" {
		return 0, fmt.Errorf("no volume url configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.volumeURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload struct {
		Volume json.RawMessage `json:"volume"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, err
	}
	return parseJSONInt(payload.Volume)
}

func parseJSONInt(raw json.RawMessage) (int, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" {
		return 0, fmt.Errorf("empty volume value")
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("malformed volume %q: %w", s, err)
	}
	return v, nil
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
