package display

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"

	"github.com/dfajtai/good-moode/internal/domain"
)

const (
	oledWidth  = 128
	oledHeight = 64
)

// SSD1306 drives the OLED over i2c. Every Frame call clears the
// offscreen canvas, runs the draw callback and blits the result to the
// device; the blit happens on every exit path. A mutex makes the
// single-writer invariant hold even if a cancelled background task
// races one last frame against the main loop.
type SSD1306 struct {
	logger *zap.Logger
	bus    i2c.BusCloser
	dev    *ssd1306.Dev
	faces  faceSet

	mu       sync.Mutex
	canvas   *image.Gray
	contrast int
}

// Options configures the OLED binding.
type Options struct {
	// I2CBus is a periph bus name; empty selects the first available.
	I2CBus    string
	FontBig   string
	FontSmall string
}

// NewSSD1306 opens the bus and initializes the device. Failure is
// fatal at startup: without the panel no screen can function.
func NewSSD1306(logger *zap.Logger, opts Options) (*SSD1306, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	bus, err := i2creg.Open(opts.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", opts.I2CBus, err)
	}

	devOpts := ssd1306.DefaultOpts
	devOpts.W = oledWidth
	devOpts.H = oledHeight
	dev, err := ssd1306.NewI2C(bus, &devOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("ssd1306 init: %w", err)
	}

	logger.Info("oled display initialized",
		zap.Int("width", oledWidth), zap.Int("height", oledHeight))

	return &SSD1306{
		logger:   logger,
		bus:      bus,
		dev:      dev,
		faces:    loadFaces(logger, opts.FontBig, opts.FontSmall),
		canvas:   image.NewGray(image.Rect(0, 0, oledWidth, oledHeight)),
		contrast: -1,
	}, nil
}

func (d *SSD1306) Size() (int, int) {
	return oledWidth, oledHeight
}

// SetContrast applies the panel contrast, skipping repeated values to
// avoid needless i2c traffic every frame.
func (d *SSD1306) SetContrast(level int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if level == d.contrast {
		return
	}
	if err := d.dev.SetContrast(byte(level)); err != nil {
		d.logger.Warn("set contrast failed", zap.Error(err))
		return
	}
	d.contrast = level
}

// Frame runs one scoped drawing pass and flushes it to the panel.
func (d *SSD1306) Frame(drawFn func(domain.Frame)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	draw.Draw(d.canvas, d.canvas.Bounds(), image.Black, image.Point{}, draw.Src)
	// Blit whatever was drawn, also when the callback panics.
	defer func() {
		if err := d.dev.Draw(d.dev.Bounds(), d.canvas, image.Point{}); err != nil {
			d.logger.Warn("display blit failed", zap.Error(err))
		}
	}()
	drawFn(&canvasFrame{img: d.canvas, faces: d.faces})
}

// Close releases the i2c bus.
func (d *SSD1306) Close() error {
	if err := d.dev.Halt(); err != nil {
		d.logger.Warn("display halt failed", zap.Error(err))
	}
	return d.bus.Close()
}
