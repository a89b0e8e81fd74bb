// Package power drives the wake and reset lines of the e-paper controller.
package power

import (
	"errors"
	"fmt"

	"github.com/golang/glog"
)

// ErrPinMode indicates the GPIO driver uses another pin numbering scheme.
var ErrPinMode = errors.New("unexpected GPIO pin numbering")

// Level is the electrical level of a line.
type Level bool

// Levels.
const (
	Low  Level = false
	High Level = true
)

// String implements fmt.Stringer.
func (l Level) String() string {
	if l {
		return "high"
	}
	return "low"
}

// Scheme is how pin numbers are interpreted.
type Scheme int

// Schemes.
const (
	SchemeUnset Scheme = iota
	// Board numbers pins by their position on the 40-pin header.
	Board
	// BCM numbers pins by the SoC GPIO channel.
	BCM
)

// String implements fmt.Stringer.
func (s Scheme) String() string {
	switch s {
	case Board:
		return "board"
	case BCM:
		return "bcm"
	}
	return "unset"
}

// ParseScheme parses "board" or "bcm".
func ParseScheme(str string) (Scheme, error) {
	switch str {
	case "board", "BOARD":
		return Board, nil
	case "bcm", "BCM":
		return BCM, nil
	}
	return SchemeUnset, fmt.Errorf("unknown pin scheme %q", str)
}

// GPIO is the pin driver.
type GPIO interface {
	// SetMode selects the pin numbering scheme.
	SetMode(Scheme) error
	// Mode returns the current numbering scheme.
	Mode() Scheme
	// Setup claims a pin as output driven at level.
	Setup(pin int, level Level) error
	// Write drives a claimed pin.
	Write(pin int, level Level) error
	// Release gives back all claimed pins. It may be called any time.
	Release() error
}

// NoGPIO is the driver used when the host has no GPIO.
// Every call succeeds without doing anything, so the serial protocol
// still works off-hardware.
type NoGPIO struct{}

// SetMode implements GPIO.
func (NoGPIO) SetMode(Scheme) error { return nil }

// Mode implements GPIO.
func (NoGPIO) Mode() Scheme { return Board }

// Setup implements GPIO.
func (NoGPIO) Setup(int, Level) error { return nil }

// Write implements GPIO.
func (NoGPIO) Write(int, Level) error { return nil }

// Release implements GPIO.
func (NoGPIO) Release() error { return nil }

// Drivers accepted by Open.
const (
	DriverAuto   = "auto"
	DriverPeriph = "periph"
	DriverNone   = "none"
)

// Open selects the GPIO driver and sets its numbering scheme.
// With DriverAuto, a host without usable GPIO gets NoGPIO.
func Open(driver string, scheme Scheme) (GPIO, error) {
	var g GPIO
	switch driver {
	case DriverNone:
		return NoGPIO{}, nil
	case DriverPeriph:
		p, err := NewPeriph()
		if err != nil {
			return nil, err
		}
		g = p
	case DriverAuto, "":
		p, err := NewPeriph()
		if err != nil {
			glog.Warningf("GPIO not available, wake/reset disabled: %v", err)
			return NoGPIO{}, nil
		}
		if !p.Has(scheme, WakePin) {
			glog.Warningf("GPIO pin %s not found, wake/reset disabled", PinName(scheme, WakePin))
			return NoGPIO{}, nil
		}
		g = p
	default:
		return nil, fmt.Errorf("unknown GPIO driver %q", driver)
	}
	if err := g.SetMode(scheme); err != nil {
		return nil, err
	}
	return g, nil
}
