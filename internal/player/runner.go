// Package player talks to the external media player: playback status,
// volume and the play/pause toggle. moOde's MPD is driven through the
// mpc command line client; an MPRIS backend exists for development off
// the appliance.
package player

import (
	"context"
	"os/exec"
)

// Runner executes an external command and returns its combined output.
//
//go:generate mockgen -destination=mocks/runner_mock.go -package=mocks github.com/dfajtai/good-moode/internal/player Runner
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands through the OS.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
