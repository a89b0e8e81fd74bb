// Package epd brings up the e-paper controller: it resolves the serial
// device, sequences the wake line and hands out a ready command session.
package epd

import (
	"errors"
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/epaper.go/pkg/epd/power"
	"github.com/robotalks/epaper.go/pkg/epd/proto"
	"github.com/robotalks/epaper.go/pkg/epd/session"
	"github.com/robotalks/epaper.go/pkg/epd/uart"
	fx "github.com/robotalks/epaper.go/pkg/framework"
)

// ErrNotReady indicates the display hasn't completed Start or is closed.
var ErrNotReady = errors.New("display not ready")

// State is the bring-up progress of the display.
type State int

// States in bring-up order.
const (
	Uninitialized State = iota
	PinsReady
	Awake
	Ready
	Closed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case PinsReady:
		return "pins-ready"
	case Awake:
		return "awake"
	case Ready:
		return "ready"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Display owns the serial session and the power lines of one controller.
// It is not safe for concurrent use.
type Display struct {
	Device string

	sess   *session.Session
	seq    *power.Sequencer
	memory proto.MemoryMode
	state  State
}

// NewDisplay creates a Display on an opened port and GPIO driver.
func NewDisplay(port session.Port, gpio power.GPIO, conf *Config) (*Display, error) {
	memory, err := conf.Memory()
	if err != nil {
		return nil, err
	}
	enc, err := conf.TextEncoding()
	if err != nil {
		return nil, err
	}
	sess := session.New(port)
	sess.Encoding = enc
	return &Display{
		sess:   sess,
		seq:    power.NewSequencer(gpio),
		memory: memory,
	}, nil
}

// State returns the current state.
func (d *Display) State() State {
	return d.state
}

// Sequencer exposes the wake/reset sequencer.
func (d *Display) Sequencer() *power.Sequencer {
	return d.seq
}

// Start runs init, wake up, memory mode and handshake.
// On failure the display is torn down.
func (d *Display) Start() error {
	if d.state != Uninitialized {
		return fmt.Errorf("start display in state %s", d.state)
	}
	if err := d.start(); err != nil {
		var errs fx.AggregatedError
		return errs.Add(err, d.Close()).Aggregate()
	}
	return nil
}

func (d *Display) start() error {
	if err := d.seq.Init(); err != nil {
		return fmt.Errorf("init pins: %w", err)
	}
	d.setState(PinsReady)
	if err := d.seq.WakeUp(); err != nil {
		return err
	}
	d.setState(Awake)
	if err := d.sess.SetMemoryMode(d.memory); err != nil {
		return err
	}
	if err := d.sess.Handshake(); err != nil {
		return err
	}
	if reply, err := d.sess.ReadAll(); err != nil {
		glog.Warningf("read handshake reply: %v", err)
	} else if len(reply) > 0 {
		glog.V(1).Infof("handshake reply %q", reply)
	}
	d.setState(Ready)
	return nil
}

func (d *Display) setState(s State) {
	glog.V(1).Infof("display %s -> %s", d.state, s)
	d.state = s
}

// Session returns the command session once the display is ready.
func (d *Display) Session() (*session.Session, error) {
	if d.state != Ready {
		return nil, fmt.Errorf("%w: %s", ErrNotReady, d.state)
	}
	return d.sess, nil
}

// Do runs fn with the session of a ready display.
// A failed write leaves the controller out of frame, so the display is
// closed and must be opened again.
func (d *Display) Do(fn func(*session.Session) error) error {
	s, err := d.Session()
	if err != nil {
		return err
	}
	return d.closeOnWriteFailure(fn(s))
}

func (d *Display) closeOnWriteFailure(err error) error {
	if !errors.Is(err, session.ErrWriteFailed) {
		return err
	}
	glog.Errorf("closing display: %v", err)
	var errs fx.AggregatedError
	return errs.Add(err, d.Close()).Aggregate()
}

// Suspend puts the controller into stop mode.
func (d *Display) Suspend() error {
	if d.state != Ready {
		return fmt.Errorf("%w: %s", ErrNotReady, d.state)
	}
	if err := d.sess.StopMode(); err != nil {
		return d.closeOnWriteFailure(err)
	}
	d.setState(PinsReady)
	return nil
}

// Resume wakes the controller from stop mode. A failed wake up leaves
// the display in PinsReady, a failed write closes it.
func (d *Display) Resume() error {
	if d.state != PinsReady {
		return fmt.Errorf("resume display in state %s", d.state)
	}
	if err := d.seq.WakeUp(); err != nil {
		return err
	}
	d.setState(Awake)
	if err := d.sess.Handshake(); err != nil {
		if errors.Is(err, session.ErrWriteFailed) {
			return d.closeOnWriteFailure(err)
		}
		d.setState(PinsReady)
		return err
	}
	d.setState(Ready)
	return nil
}

// Close closes the port and releases the pins. Calling it again has
// no effect. Errors from both are reported.
func (d *Display) Close() error {
	if d.state == Closed {
		return nil
	}
	var errs fx.AggregatedError
	errs.Add(d.sess.Close(), d.seq.Cleanup())
	d.setState(Closed)
	return errs.Aggregate()
}

// Open finds the serial device, opens it, selects the GPIO driver and
// starts the display.
func Open(conf *Config) (*Display, error) {
	scheme, err := conf.Scheme()
	if err != nil {
		return nil, err
	}
	dev, err := uart.FindDevice(conf.Devices)
	if err != nil {
		return nil, err
	}
	port, err := uart.Open(dev, conf.Baud, conf.ReadTimeout)
	if err != nil {
		return nil, err
	}
	gpio, err := power.Open(conf.GPIO, scheme)
	if err != nil {
		port.Close()
		return nil, err
	}
	d, err := NewDisplay(port, gpio, conf)
	if err != nil {
		var errs fx.AggregatedError
		return nil, errs.Add(err, port.Close(), gpio.Release()).Aggregate()
	}
	d.Device = dev
	if err := d.Start(); err != nil {
		return nil, err
	}
	glog.Infof("display ready on %s", dev)
	return d, nil
}

// Run opens the display, runs fn and always tears the display down.
func Run(conf *Config, fn func(*Display) error) error {
	d, err := Open(conf)
	if err != nil {
		return err
	}
	return d.Scope(fn)
}

// Scope runs fn and closes the display whatever fn returns.
// fn's error comes first when teardown fails too.
func (d *Display) Scope(fn func(*Display) error) (err error) {
	defer func() {
		var errs fx.AggregatedError
		err = errs.Add(err, d.Close()).Aggregate()
	}()
	return fn(d)
}
