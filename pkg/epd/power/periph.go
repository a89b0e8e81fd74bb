package power

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	fx "github.com/robotalks/epaper.go/pkg/framework"
)

// Periph drives pins through periph.io.
type Periph struct {
	mode   Scheme
	pins   map[int]gpio.PinIO
	lookup func(string) gpio.PinIO
}

// NewPeriph initializes the periph.io host drivers.
func NewPeriph() (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	return newPeriph(gpioreg.ByName), nil
}

func newPeriph(lookup func(string) gpio.PinIO) *Periph {
	return &Periph{pins: make(map[int]gpio.PinIO), lookup: lookup}
}

// PinName maps a pin number to the periph.io name in the scheme,
// P1_n for the header, GPIOn for BCM.
func PinName(scheme Scheme, pin int) string {
	if scheme == BCM {
		return fmt.Sprintf("GPIO%d", pin)
	}
	return fmt.Sprintf("P1_%d", pin)
}

// Has tells if the pin exists on this host.
func (p *Periph) Has(scheme Scheme, pin int) bool {
	return p.lookup(PinName(scheme, pin)) != nil
}

// SetMode implements GPIO.
func (p *Periph) SetMode(s Scheme) error {
	if len(p.pins) > 0 && s != p.mode {
		return fmt.Errorf("%w: can't switch to %s with pins claimed", ErrPinMode, s)
	}
	p.mode = s
	return nil
}

// Mode implements GPIO.
func (p *Periph) Mode() Scheme {
	return p.mode
}

// Setup implements GPIO.
func (p *Periph) Setup(pin int, level Level) error {
	if p.mode == SchemeUnset {
		return fmt.Errorf("%w: mode not set", ErrPinMode)
	}
	name := PinName(p.mode, pin)
	io := p.lookup(name)
	if io == nil {
		return fmt.Errorf("gpio: pin %s not found", name)
	}
	if err := io.Out(gpio.Level(level)); err != nil {
		return fmt.Errorf("gpio: setup %s: %w", name, err)
	}
	p.pins[pin] = io
	return nil
}

// Write implements GPIO.
func (p *Periph) Write(pin int, level Level) error {
	io, ok := p.pins[pin]
	if !ok {
		return fmt.Errorf("gpio: pin %d not set up", pin)
	}
	if err := io.Out(gpio.Level(level)); err != nil {
		return fmt.Errorf("gpio: drive %s %s: %w", io.Name(), level, err)
	}
	return nil
}

// Release implements GPIO, claimed pins go back to floating inputs.
func (p *Periph) Release() error {
	var errs fx.AggregatedError
	for pin, io := range p.pins {
		errs.Add(io.In(gpio.Float, gpio.NoEdge))
		delete(p.pins, pin)
	}
	return errs.Aggregate()
}
