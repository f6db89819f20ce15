package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dfajtai/good-moode/internal/button"
	"github.com/dfajtai/good-moode/internal/config"
	"github.com/dfajtai/good-moode/internal/display"
	"github.com/dfajtai/good-moode/internal/domain"
	"github.com/dfajtai/good-moode/internal/icy"
	"github.com/dfajtai/good-moode/internal/player"
	"github.com/dfajtai/good-moode/internal/screen"
	"github.com/dfajtai/good-moode/internal/statemachine"
)

func main() {
	app := fx.New(
		AppOptions,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	// Wait for interrupt signal
	<-ctx.Done()

	if err := app.Stop(context.Background()); err != nil {
		panic(err)
	}
}

// AppOptions is the daemon's full dependency graph. Exported so tests
// can validate and exercise it.
var AppOptions = fx.Options(
	fx.Provide(
		config.Load,
		newLogger,
		newRunner,
		newMPC,
		newStatusSource,
		newSurface,
		newReader,
		newPlayingScreen,
		newIdleScreen,
		newButtonWatcher,
		newMachine,
	),
	fx.Invoke(registerHooks),
)

// newLogger builds the zap logger per configuration.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Log.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newRunner() player.Runner {
	return player.ExecRunner{}
}

func newMPC(logger *zap.Logger, runner player.Runner, cfg *config.Config) *player.MPC {
	return player.NewMPC(logger, runner, cfg.Player.VolumeURL)
}

// newStatusSource selects the status backend. mpc is the appliance
// default; mpris exists for development on a desktop session.
func newStatusSource(logger *zap.Logger, mpc *player.MPC, cfg *config.Config) (domain.StatusSource, error) {
	switch cfg.Player.Source {
	case "", "mpc":
		return mpc, nil
	case "mpris":
		return player.NewMPRIS(logger)
	default:
		return nil, fmt.Errorf("unknown player source %q", cfg.Player.Source)
	}
}

// newSurface opens the configured display. "none" renders to memory,
// which keeps the daemon runnable off the appliance.
func newSurface(logger *zap.Logger, cfg *config.Config) (domain.Surface, error) {
	switch cfg.Display.Driver {
	case "", "none":
		return display.NewMemory(128, 64), nil
	case "ssd1306":
		return display.NewSSD1306(logger, display.Options{
			I2CBus:    cfg.Display.I2CBus,
			FontBig:   cfg.Display.FontBig,
			FontSmall: cfg.Display.FontSmall,
		})
	default:
		return nil, fmt.Errorf("unknown display driver %q", cfg.Display.Driver)
	}
}

func newReader(logger *zap.Logger, cfg *config.Config) *icy.Reader {
	return icy.NewReader(logger, cfg.Stream.URL, cfg.Stream.Timeout)
}

func newPlayingScreen(
	logger *zap.Logger,
	surface domain.Surface,
	reader *icy.Reader,
	mpc *player.MPC,
	cfg *config.Config,
) *screen.PlayingScreen {
	return screen.NewPlayingScreen(logger, surface, reader, mpc, screen.PlayingConfig{
		StationName:   cfg.UI.StationName,
		Interval:      cfg.Stream.PollInterval,
		Contrast:      cfg.Display.ContrastPlaying,
		ScrollStep:    cfg.UI.ScrollStep,
		ScrollGap:     cfg.UI.ScrollGap,
		ShiftInterval: cfg.UI.ShiftInterval,
	})
}

func newIdleScreen(logger *zap.Logger, surface domain.Surface, cfg *config.Config) *screen.IdleScreen {
	return screen.NewIdleScreen(logger, surface, screen.IdleConfig{
		Contrast:      cfg.Display.ContrastIdle,
		BlinkInterval: cfg.UI.BlinkInterval,
		ShiftInterval: cfg.UI.ShiftInterval,
	})
}

// newButtonWatcher wires the physical button to play/pause. A missing
// GPIO line is fatal at startup; a disabled button samples an idle
// fake so the rest of the daemon is unaffected.
func newButtonWatcher(logger *zap.Logger, mpc *player.MPC, cfg *config.Config) (*button.Watcher, error) {
	var line button.Line = button.NopLine{}
	if cfg.Button.Enabled {
		opened, err := button.OpenGPIO(cfg.Button.Pin)
		if err != nil {
			return nil, fmt.Errorf("open button pin %q: %w", cfg.Button.Pin, err)
		}
		line = opened
	}
	toggle := func() { mpc.Toggle(context.Background()) }
	return button.NewWatcher(logger, line, button.Options{
		SampleInterval: cfg.Button.SampleInterval,
		Debounce:       cfg.Button.Debounce,
		Hold:           cfg.Button.Hold,
		OnPress:        toggle,
		OnHold:         toggle,
	}), nil
}

func newMachine(
	logger *zap.Logger,
	status domain.StatusSource,
	idle *screen.IdleScreen,
	playing *screen.PlayingScreen,
	watcher *button.Watcher,
	cfg *config.Config,
) *statemachine.Machine {
	return statemachine.NewMachine(logger, status, idle, playing, watcher, statemachine.Config{
		PollInterval: cfg.Player.PollInterval,
		JoinTimeout:  cfg.Player.JoinTimeout,
	})
}

// registerHooks starts the button watcher and the state machine on app
// start and unwinds them on stop. The machine owns the watcher's
// teardown; the surface and status source are closed last.
func registerHooks(
	lc fx.Lifecycle,
	logger *zap.Logger,
	machine *statemachine.Machine,
	watcher *button.Watcher,
	surface domain.Surface,
	status domain.StatusSource,
) {
	var cancel context.CancelFunc
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("daemon starting")
			var runCtx context.Context
			runCtx, cancel = context.WithCancel(context.Background())
			watcher.Start()
			go func() {
				defer close(done)
				machine.Run(runCtx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("daemon stopping")
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
			if c, ok := status.(io.Closer); ok {
				if err := c.Close(); err != nil {
					logger.Warn("status source close failed", zap.Error(err))
				}
			}
			if c, ok := surface.(io.Closer); ok {
				if err := c.Close(); err != nil {
					logger.Warn("display close failed", zap.Error(err))
				}
			}
			return nil
		},
	})
}
