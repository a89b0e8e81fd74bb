package power

import (
	"fmt"
	"time"

	"github.com/golang/glog"
)

// Pins of the controller in Board numbering.
const (
	WakePin  = 23
	ResetPin = 24
)

// Wake pulse timing. The controller restarts its boot timer on every edge,
// so the holds must not be shortened or reordered.
const (
	WakeLowHold  = 10 * time.Microsecond
	WakeHighHold = 500 * time.Microsecond
	WakeSettle   = 10 * time.Millisecond
)

// ResetHold is how long the reset line is held low.
const ResetHold = 10 * time.Microsecond

// PulseState is the progress of the wake pulse.
type PulseState int

// Pulse states.
const (
	Idle PulseState = iota
	Pulsing
	Settled
)

// String implements fmt.Stringer.
func (s PulseState) String() string {
	switch s {
	case Pulsing:
		return "pulsing"
	case Settled:
		return "settled"
	}
	return "idle"
}

// Sequencer runs the boot sequence on the wake and reset lines.
type Sequencer struct {
	WakePin  int
	ResetPin int
	// Sleep holds a level, time.Sleep unless replaced.
	Sleep func(time.Duration)

	gpio    GPIO
	enabled bool
	state   PulseState
}

// NewSequencer creates a Sequencer on the driver.
// With NoGPIO (or nil) every operation is a no-op.
func NewSequencer(g GPIO) *Sequencer {
	s := &Sequencer{
		WakePin:  WakePin,
		ResetPin: ResetPin,
		Sleep:    time.Sleep,
		gpio:     g,
		enabled:  true,
	}
	if _, ok := g.(NoGPIO); ok || g == nil {
		s.gpio, s.enabled = NoGPIO{}, false
	}
	return s
}

// Enabled tells whether real pins are driven.
func (s *Sequencer) Enabled() bool {
	return s.enabled
}

// State returns the wake pulse state.
func (s *Sequencer) State() PulseState {
	return s.state
}

// Init claims both lines and drives them high, their resting level.
func (s *Sequencer) Init() error {
	if !s.enabled {
		glog.V(1).Info("no GPIO: pin init skipped")
		return nil
	}
	if mode := s.gpio.Mode(); mode != Board {
		return fmt.Errorf("%w: %s, want %s", ErrPinMode, mode, Board)
	}
	if err := s.gpio.Setup(s.WakePin, High); err != nil {
		return err
	}
	return s.gpio.Setup(s.ResetPin, High)
}

// WakeUp pulses the wake line: low 10µs, high 500µs, low 10ms.
func (s *Sequencer) WakeUp() error {
	if !s.enabled {
		glog.V(1).Info("no GPIO: wake up skipped")
		return nil
	}
	s.state = Pulsing
	steps := []struct {
		level Level
		hold  time.Duration
	}{
		{Low, WakeLowHold},
		{High, WakeHighHold},
		{Low, WakeSettle},
	}
	for _, step := range steps {
		if err := s.gpio.Write(s.WakePin, step.level); err != nil {
			s.state = Idle
			return fmt.Errorf("wake pulse: %w", err)
		}
		s.Sleep(step.hold)
	}
	s.state = Settled
	glog.V(1).Info("wake pulse done")
	return nil
}

// Reset pulses the reset line low and waits for the controller to restart.
func (s *Sequencer) Reset() error {
	if !s.enabled {
		glog.V(1).Info("no GPIO: reset skipped")
		return nil
	}
	if err := s.gpio.Write(s.ResetPin, Low); err != nil {
		return fmt.Errorf("reset pulse: %w", err)
	}
	s.Sleep(ResetHold)
	if err := s.gpio.Write(s.ResetPin, High); err != nil {
		return fmt.Errorf("reset pulse: %w", err)
	}
	s.Sleep(WakeSettle)
	s.state = Idle
	return nil
}

// Cleanup releases the lines. It's safe to call repeatedly and
// before or after a failed Init.
func (s *Sequencer) Cleanup() error {
	s.state = Idle
	if !s.enabled {
		glog.V(1).Info("no GPIO: cleanup skipped")
		return nil
	}
	return s.gpio.Release()
}
