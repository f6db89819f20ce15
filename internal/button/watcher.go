// Package button watches a debounced physical push button on a GPIO
// line and dispatches press/hold actions.
package button

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dfajtai/good-moode/internal/domain"
)

// Line is a single digital input line. Implementations must tolerate
// Read being called on a fixed short cadence.
type Line interface {
	// Read returns the current level, true meaning high. The button is
	// active-low: the line idles high (pulled up) and reads low while
	// pressed.
	Read() (bool, error)
	Close() error
}

// Watcher samples a Line on its own goroutine, debounces falling edges
// and invokes the configured actions. Actions are dispatched
// fire-and-forget so a slow action can never distort the debounce
// window.
type Watcher struct {
	logger *zap.Logger
	line   Line
	deb    *debouncer
	sample time.Duration

	onPress func()
	onHold  func()

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Options configures a Watcher.
type Options struct {
	SampleInterval time.Duration
	Debounce       time.Duration
	// Hold <= 0 disables long-hold detection.
	Hold    time.Duration
	OnPress func()
	OnHold  func()
}

// NewWatcher wraps an already-open line. The caller keeps ownership of
// the line until Start is called; afterwards Stop closes it.
func NewWatcher(logger *zap.Logger, line Line, opts Options) *Watcher {
	return &Watcher{
		logger:  logger,
		line:    line,
		sample:  opts.SampleInterval,
		onPress: opts.OnPress,
		onHold:  opts.OnHold,
		deb:     newDebouncer(opts.Debounce, opts.Hold),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the sampling loop.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop terminates the sampling loop and releases the line. Idempotent:
// the second and later calls are no-ops.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		<-w.done
		if err := w.line.Close(); err != nil {
			w.logger.Warn("button line close failed", zap.Error(err))
		}
		w.logger.Info("button watcher stopped")
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	ticker := time.NewTicker(w.sample)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			level, err := w.line.Read()
			if err != nil {
				w.logger.Debug("button line read failed", zap.Error(err))
				continue
			}
			if event, ok := w.deb.observe(level); ok {
				w.dispatch(event)
			}
		}
	}
}

func (w *Watcher) dispatch(event domain.ButtonEvent) {
	w.logger.Info("button event", zap.Stringer("event", event))
	var action func()
	switch event {
	case domain.ButtonPress:
		action = w.onPress
	case domain.ButtonHold:
		action = w.onHold
	}
	if action != nil {
		go action()
	}
}
