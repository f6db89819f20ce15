package player

import (
	"context"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"github.com/dfajtai/good-moode/internal/domain"
)

const (
	mprisPrefix     = "org.mpris.MediaPlayer2."
	mprisPath       = "/org/mpris/MediaPlayer2"
	playbackStatus  = "org.mpris.MediaPlayer2.Player.PlaybackStatus"
	dbusListNames   = "org.freedesktop.DBus.ListNames"
	statusPlayingDB = "Playing"
)

// MPRIS samples playback state from MPRIS players on the session bus.
// It exists for running the daemon off the appliance, where mpc/MPD is
// not around but a desktop player is. Like every StatusSource it never
// surfaces an error: any bus trouble reads as idle.
type MPRIS struct {
	logger *zap.Logger
	conn   busConn
}

// busConn is the slice of *dbus.Conn the source needs; narrowed for
// tests.
type busConn interface {
	BusObject() dbus.BusObject
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	Close() error
}

// NewMPRIS connects to the session bus. Connection failure is fatal:
// a source that can never answer is a misconfiguration.
func NewMPRIS(logger *zap.Logger) (*MPRIS, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("session bus connection failed: %w", err)
	}
	return &MPRIS{logger: logger, conn: conn}, nil
}

// State reports Playing when any MPRIS player on the bus is playing.
func (m *MPRIS) State(ctx context.Context) domain.PlayerState {
	var names []string
	err := m.conn.BusObject().CallWithContext(ctx, dbusListNames, 0).Store(&names)
	if err != nil {
		m.logger.Debug("dbus list names failed", zap.Error(err))
		return domain.StateIdle
	}

	for _, name := range names {
		if !strings.HasPrefix(name, mprisPrefix) {
			continue
		}
		variant, err := m.conn.Object(name, mprisPath).GetProperty(playbackStatus)
		if err != nil {
			m.logger.Debug("playback status query failed",
				zap.String("player", name), zap.Error(err))
			continue
		}
		if status, ok := variant.Value().(string); ok && status == statusPlayingDB {
			return domain.StatePlaying
		}
	}
	return domain.StateIdle
}

// Close releases the bus connection.
func (m *MPRIS) Close() error {
	return m.conn.Close()
}
