package button

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

type gpioLine struct {
	pin gpio.PinIO
}

// OpenGPIO opens the named pin (e.g. "GPIO22") as a pulled-up input.
// Failure here is fatal at startup: without the line no button can
// function.
func OpenGPIO(name string) (Line, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio pin %q not found", name)
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure %s as pulled-up input: %w", name, err)
	}
	return &gpioLine{pin: pin}, nil
}

func (l *gpioLine) Read() (bool, error) {
	return l.pin.Read() == gpio.High, nil
}

func (l *gpioLine) Close() error {
	return l.pin.Halt()
}

// NopLine is an always-idle line for appliances without a wired button.
type NopLine struct{}

func (NopLine) Read() (bool, error) { return true, nil }
func (NopLine) Close() error        { return nil }
