// Package uart opens the serial link to the e-paper controller.
package uart

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"
)

// Defaults of the controller link.
const (
	DefaultBaud        = 115200
	DefaultReadTimeout = 2 * time.Second
)

// DefaultDevices are probed in order when no device is configured:
// the on-board UART first, then the CH340 USB adapter.
var DefaultDevices = []string{
	"/dev/ttyAMA0",
	"/dev/serial/by-id/usb-1a86_USB2.0-Serial-if00-port0",
}

// ErrDeviceNotFound indicates none of the candidate devices exists.
var ErrDeviceNotFound = errors.New("serial device not found")

// FindDevice returns the first candidate present on the filesystem.
func FindDevice(candidates []string) (string, error) {
	for _, dev := range candidates {
		if dev == "" {
			continue
		}
		if _, err := os.Stat(dev); err == nil {
			glog.V(1).Infof("serial device %s", dev)
			return dev, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrDeviceNotFound, strings.Join(candidates, ", "))
}

// rawPort is the subset of serial.Port used here.
type rawPort interface {
	Read([]byte) (int, error)
	Write([]byte) (int, error)
	SetReadTimeout(time.Duration) error
	Close() error
}

// Port is an opened serial device.
type Port struct {
	Path string

	port    rawPort
	timeout time.Duration
	pending []byte
}

// Open opens the device as 8N1 with the baud rate and read timeout.
func Open(path string, baud int, timeout time.Duration) (*Port, error) {
	sp, err := serial.Open(path, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}
	p, err := newPort(path, sp, timeout)
	if err != nil {
		sp.Close()
		return nil, err
	}
	glog.V(1).Infof("opened %s at %d baud", path, baud)
	return p, nil
}

func newPort(path string, raw rawPort, timeout time.Duration) (*Port, error) {
	if err := raw.SetReadTimeout(timeout); err != nil {
		return nil, fmt.Errorf("set read timeout on %s: %w", path, err)
	}
	return &Port{Path: path, port: raw, timeout: timeout}, nil
}

// Read returns pending bytes first, then reads the device
// waiting at most the read timeout.
func (p *Port) Read(b []byte) (int, error) {
	if len(p.pending) > 0 {
		n := copy(b, p.pending)
		p.pending = p.pending[n:]
		return n, nil
	}
	return p.port.Read(b)
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Buffered polls the device without waiting and returns the number of
// bytes which Read returns without blocking.
func (p *Port) Buffered() (int, error) {
	if err := p.port.SetReadTimeout(0); err != nil {
		return len(p.pending), err
	}
	defer p.restoreTimeout()
	buf := make([]byte, 256)
	for {
		n, err := p.port.Read(buf)
		p.pending = append(p.pending, buf[:n]...)
		if err != nil {
			return len(p.pending), err
		}
		if n == 0 {
			return len(p.pending), nil
		}
	}
}

func (p *Port) restoreTimeout() {
	if err := p.port.SetReadTimeout(p.timeout); err != nil {
		glog.Warningf("%s: restore read timeout %v: %v", p.Path, p.timeout, err)
	}
}

// Close closes the device.
func (p *Port) Close() error {
	p.pending = nil
	return p.port.Close()
}
