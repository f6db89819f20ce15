package player

import (
	"context"
	"fmt"
	"testing"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"github.com/dfajtai/good-moode/internal/domain"
)

// fakeBusObject answers ListNames and GetProperty; every other
// BusObject method panics via the embedded nil interface, which is fine
// because the source never calls them.
type fakeBusObject struct {
	dbus.BusObject
	names    []string
	statuses map[string]string
	listErr  error
	dest     string
}

func (o *fakeBusObject) CallWithContext(_ context.Context, method string, _ dbus.Flags, _ ...interface{}) *dbus.Call {
	if method != dbusListNames {
		return &dbus.Call{Err: fmt.Errorf("unexpected method %s", method)}
	}
	if o.listErr != nil {
		return &dbus.Call{Err: o.listErr}
	}
	return &dbus.Call{Body: []interface{}{o.names}}
}

func (o *fakeBusObject) GetProperty(prop string) (dbus.Variant, error) {
	if prop != playbackStatus {
		return dbus.Variant{}, fmt.Errorf("unexpected property %s", prop)
	}
	status, ok := o.statuses[o.dest]
	if !ok {
		return dbus.Variant{}, fmt.Errorf("no such player %s", o.dest)
	}
	return dbus.MakeVariant(status), nil
}

type fakeConn struct {
	obj *fakeBusObject
}

func (c *fakeConn) BusObject() dbus.BusObject { return c.obj }

func (c *fakeConn) Object(dest string, _ dbus.ObjectPath) dbus.BusObject {
	scoped := *c.obj
	scoped.dest = dest
	return &scoped
}

func (c *fakeConn) Close() error { return nil }

func TestMPRISState(t *testing.T) {
	tests := []struct {
		name     string
		names    []string
		statuses map[string]string
		listErr  error
		expected domain.PlayerState
	}{
		{
			name:  "one player playing",
			names: []string{":1.5", "org.freedesktop.DBus", "org.mpris.MediaPlayer2.mpd"},
			statuses: map[string]string{
				"org.mpris.MediaPlayer2.mpd": "Playing",
			},
			expected: domain.StatePlaying,
		},
		{
			name:  "players paused and stopped",
			names: []string{"org.mpris.MediaPlayer2.mpd", "org.mpris.MediaPlayer2.spotify"},
			statuses: map[string]string{
				"org.mpris.MediaPlayer2.mpd":     "Paused",
				"org.mpris.MediaPlayer2.spotify": "Stopped",
			},
			expected: domain.StateIdle,
		},
		{
			name:     "no players on the bus",
			names:    []string{":1.5", "org.freedesktop.DBus"},
			expected: domain.StateIdle,
		},
		{
			name:     "bus failure reads as idle",
			listErr:  fmt.Errorf("connection reset"),
			expected: domain.StateIdle,
		},
		{
			name:  "broken player skipped, next one playing",
			names: []string{"org.mpris.MediaPlayer2.dead", "org.mpris.MediaPlayer2.mpd"},
			statuses: map[string]string{
				"org.mpris.MediaPlayer2.mpd": "Playing",
			},
			expected: domain.StatePlaying,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MPRIS{
				logger: zap.NewNop(),
				conn: &fakeConn{obj: &fakeBusObject{
					names:    tt.names,
					statuses: tt.statuses,
					listErr:  tt.listErr,
				}},
			}
			if got := m.State(context.Background()); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
