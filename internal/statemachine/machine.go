// Package statemachine owns the daemon's two states and the lifecycle
// of the now-playing background task. All transitions happen on one
// goroutine; the playing task is the only other writer the machine
// ever spawns, and it is fully joined before a new one may start.
package statemachine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dfajtai/good-moode/internal/domain"
)

// PlayingTask is the background loop behind the now-playing screen.
// Run blocks until its context is cancelled. SetRenderEnabled gates
// drawing so a task racing slightly past a transition touches nothing.
type PlayingTask interface {
	Run(ctx context.Context)
	SetRenderEnabled(enabled bool)
}

// IdleRenderer redraws the idle screen once per call.
type IdleRenderer interface {
	RenderTick()
}

// Stopper is anything torn down at shutdown after the playing task.
type Stopper interface {
	Stop()
}

// Config tunes the machine's loop.
type Config struct {
	// PollInterval is the cadence of player-state queries and idle redraws.
	PollInterval time.Duration
	// JoinTimeout bounds the wait for a cancelled playing task to exit.
	JoinTimeout time.Duration
}

// Machine polls the player state and switches between the idle clock
// and the now-playing task. At most one playing task exists at a time.
type Machine struct {
	logger  *zap.Logger
	status  domain.StatusSource
	idle    IdleRenderer
	playing PlayingTask
	button  Stopper
	cfg     Config

	state      domain.PlayerState
	cancelTask context.CancelFunc
	taskDone   chan struct{}

	// stale holds the done channel of a task that missed its join
	// timeout. No new task starts until it closes.
	stale chan struct{}
}

// NewMachine creates the state machine. button may be nil when no
// watcher is running.
func NewMachine(
	logger *zap.Logger,
	status domain.StatusSource,
	idle IdleRenderer,
	playing PlayingTask,
	button Stopper,
	cfg Config,
) *Machine {
	return &Machine{
		logger:  logger,
		status:  status,
		idle:    idle,
		playing: playing,
		button:  button,
		cfg:     cfg,
		state:   domain.StateIdle,
	}
}

// Run drives the main loop until ctx is cancelled, then tears down the
// playing task and the button watcher, in that order.
func (m *Machine) Run(ctx context.Context) {
	m.logger.Info("state machine started",
		zap.Duration("poll_interval", m.cfg.PollInterval))

	m.apply(ctx, m.status.State(ctx))

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return
		case <-ticker.C:
			m.apply(ctx, m.status.State(ctx))
			switch m.state {
			case domain.StateIdle:
				m.idle.RenderTick()
			case domain.StatePlaying:
				// Retries a start that was delayed by a stale task.
				m.startTask(ctx)
			}
		}
	}
}

// apply transitions to next if it differs from the current state.
func (m *Machine) apply(ctx context.Context, next domain.PlayerState) {
	if next == m.state {
		return
	}
	m.logger.Info("player state changed",
		zap.Stringer("from", m.state),
		zap.Stringer("to", next))
	m.state = next

	switch next {
	case domain.StatePlaying:
		m.playing.SetRenderEnabled(true)
		m.startTask(ctx)
	case domain.StateIdle:
		m.playing.SetRenderEnabled(false)
		m.stopTask()
	}
}

// startTask launches one playing task. It refuses to start while a
// previous task is still alive, including one that outlived its join
// timeout; the next poll retries.
func (m *Machine) startTask(ctx context.Context) {
	if m.taskDone != nil {
		return
	}
	if m.stale != nil {
		select {
		case <-m.stale:
			m.stale = nil
		default:
			m.logger.Warn("previous task still running, delaying start")
			return
		}
	}

	taskCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancelTask = cancel
	m.taskDone = done
	go func() {
		defer close(done)
		m.playing.Run(taskCtx)
	}()
}

// stopTask cancels the running task and waits for it, bounded by the
// join timeout. Rendering is already disabled by the caller, so a task
// that overruns the timeout can no longer touch the surface.
func (m *Machine) stopTask() {
	if m.taskDone == nil {
		return
	}
	m.cancelTask()

	timer := time.NewTimer(m.cfg.JoinTimeout)
	defer timer.Stop()
	select {
	case <-m.taskDone:
	case <-timer.C:
		m.logger.Warn("playing task did not exit in time",
			zap.Duration("timeout", m.cfg.JoinTimeout))
		m.stale = m.taskDone
	}
	m.cancelTask = nil
	m.taskDone = nil
}

func (m *Machine) shutdown() {
	m.logger.Info("state machine stopping")
	m.playing.SetRenderEnabled(false)
	m.stopTask()
	if m.button != nil {
		m.button.Stop()
	}
}
