// Package session sends controller commands over a serial port.
package session

import (
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/golang/glog"
	"golang.org/x/text/encoding"

	"github.com/robotalks/epaper.go/pkg/epd/proto"
)

// SettleDelay is the pause after every frame for the controller to process it.
const SettleDelay = 100 * time.Millisecond

// Port is the serial link to the controller.
type Port interface {
	io.ReadWriteCloser
	// Buffered returns the number of received bytes which can be read
	// without blocking.
	Buffered() (int, error)
}

// Session issues commands to the controller, one frame per command.
// It is not safe for concurrent use.
type Session struct {
	// Encoding converts strings for DrawString, nil sends UTF-8.
	Encoding encoding.Encoding

	port   Port
	settle time.Duration
	sleep  func(time.Duration)
	closed bool
}

// New creates a Session on an opened port.
func New(port Port) *Session {
	return &Session{
		port:   port,
		settle: SettleDelay,
		sleep:  time.Sleep,
	}
}

// WithSettle replaces SettleDelay for this session.
func (s *Session) WithSettle(d time.Duration) *Session {
	s.settle = d
	return s
}

// Send encodes the command with its parameter parts and writes the frame.
func (s *Session) Send(cmd proto.Command, parts ...[]byte) error {
	f, err := proto.Build(cmd, parts...)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return s.SendFrame(f)
}

// SendFrame writes one frame and waits SettleDelay.
// A short write fails with ErrWriteIncomplete and is not retried,
// every write failure matches ErrWriteFailed.
func (s *Session) SendFrame(f *proto.Frame) error {
	if s.closed {
		return ErrClosed
	}
	b := f.Bytes()
	glog.V(2).Infof("TX %s: % x", f.Command, b)
	n, err := s.port.Write(b)
	switch {
	case n > 0 && n < len(b):
		return &WriteIncompleteError{Command: f.Command, Written: n, Want: len(b), Err: err}
	case err != nil:
		return &WriteError{Command: f.Command, Err: err}
	case n != len(b):
		return &WriteIncompleteError{Command: f.Command, Written: n, Want: len(b)}
	}
	s.sleep(s.settle)
	return nil
}

func (s *Session) sendShorts(cmd proto.Command, vals ...int) error {
	params, err := proto.Shorts(vals...)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return s.Send(cmd, params)
}

// Handshake checks the controller is alive, it replies "OK".
func (s *Session) Handshake() error {
	return s.Send(proto.CmdHandshake)
}

// SetBaud changes the baud rate of the controller.
// The port must be reopened with the new rate afterwards.
func (s *Session) SetBaud(baud uint32) error {
	return s.Send(proto.CmdSetBaud, []byte{byte(baud >> 24), byte(baud >> 16), byte(baud >> 8), byte(baud)})
}

// ReadBaud asks the controller for its baud rate, the reply is in Response.
func (s *Session) ReadBaud() error {
	return s.Send(proto.CmdReadBaud)
}

// SetMemoryMode selects the storage fonts and pictures are loaded from.
func (s *Session) SetMemoryMode(mode proto.MemoryMode) error {
	return s.Send(proto.CmdMemoryMode, []byte{byte(mode)})
}

// StopMode puts the controller to sleep, a wake pulse brings it back.
func (s *Session) StopMode() error {
	return s.Send(proto.CmdStopMode)
}

// Update refreshes the panel with everything drawn since the last update.
func (s *Session) Update() error {
	return s.Send(proto.CmdUpdate)
}

// SetRotation sets the screen orientation.
func (s *Session) SetRotation(r proto.Rotation) error {
	return s.Send(proto.CmdScreenRotation, []byte{byte(r)})
}

// LoadFont loads fonts from the selected memory into the controller.
func (s *Session) LoadFont() error {
	return s.Send(proto.CmdLoadFont)
}

// LoadPicture loads pictures from the selected memory into the controller.
func (s *Session) LoadPicture() error {
	return s.Send(proto.CmdLoadPicture)
}

// SetColor sets the foreground and background colors.
func (s *Session) SetColor(front, back proto.Color) error {
	return s.Send(proto.CmdSetColor, []byte{byte(front), byte(back)})
}

// SetFont selects the ASCII font.
func (s *Session) SetFont(font proto.Font) error {
	return s.Send(proto.CmdSetEnFont, []byte{byte(font)})
}

// SetChineseFont selects the GBK font.
func (s *Session) SetChineseFont(font proto.Font) error {
	return s.Send(proto.CmdSetChFont, []byte{byte(font)})
}

// DrawPixel draws a single point in the foreground color.
func (s *Session) DrawPixel(x, y int) error {
	return s.sendShorts(proto.CmdDrawPixel, x, y)
}

// DrawLine draws a line from (x0, y0) to (x1, y1).
func (s *Session) DrawLine(x0, y0, x1, y1 int) error {
	return s.sendShorts(proto.CmdDrawLine, x0, y0, x1, y1)
}

// FillRect fills the rectangle between two corners.
func (s *Session) FillRect(x0, y0, x1, y1 int) error {
	return s.sendShorts(proto.CmdFillRect, x0, y0, x1, y1)
}

// DrawCircle draws the outline of a circle.
func (s *Session) DrawCircle(cx, cy, r int) error {
	return s.sendShorts(proto.CmdDrawCircle, cx, cy, r)
}

// FillCircle draws a filled circle.
func (s *Session) FillCircle(cx, cy, r int) error {
	return s.sendShorts(proto.CmdFillCircle, cx, cy, r)
}

// DrawTriangle draws the outline of a triangle.
func (s *Session) DrawTriangle(x0, y0, x1, y1, x2, y2 int) error {
	return s.sendShorts(proto.CmdDrawTriangle, x0, y0, x1, y1, x2, y2)
}

// FillTriangle draws a filled triangle.
func (s *Session) FillTriangle(x0, y0, x1, y1, x2, y2 int) error {
	return s.sendShorts(proto.CmdFillTriangle, x0, y0, x1, y1, x2, y2)
}

// Clear fills the screen with the background color.
func (s *Session) Clear() error {
	return s.Send(proto.CmdClear)
}

// DrawString renders text with its top-left corner at (x, y).
func (s *Session) DrawString(text string, x, y int) error {
	return s.drawText(proto.CmdDrawString, text, s.Encoding, x, y)
}

// DrawBitmap shows a picture stored on the controller, e.g. "PIC1.BMP".
func (s *Session) DrawBitmap(name string, x, y int) error {
	return s.drawText(proto.CmdDrawBitmap, name, nil, x, y)
}

func (s *Session) drawText(cmd proto.Command, text string, enc encoding.Encoding, x, y int) error {
	raw, err := proto.Text(text, enc)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	params, err := proto.StringParams(raw, x, y)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return s.Send(cmd, params)
}

// Response drains the bytes received so far without blocking.
// The amount is fixed when iteration starts, iterating again re-queries
// the port. Bytes already read when the caller stops early are discarded.
// The controller doesn't acknowledge frames, so this is diagnostics only.
func (s *Session) Response() iter.Seq2[byte, error] {
	return func(yield func(byte, error) bool) {
		if s.closed {
			yield(0, ErrClosed)
			return
		}
		n, err := s.port.Buffered()
		if err != nil {
			yield(0, err)
			return
		}
		buf := make([]byte, 64)
		for n > 0 {
			m, err := s.port.Read(buf[:min(n, len(buf))])
			for _, b := range buf[:m] {
				if !yield(b, nil) {
					return
				}
			}
			if err != nil {
				yield(0, err)
				return
			}
			if m == 0 {
				return
			}
			n -= m
		}
	}
}

// ReadAll collects Response into a slice.
func (s *Session) ReadAll() ([]byte, error) {
	var out []byte
	for b, err := range s.Response() {
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	if len(out) > 0 {
		glog.V(2).Infof("RX % x", out)
	}
	return out, nil
}

// ReadFrames returns the well-formed frames found in Response.
func (s *Session) ReadFrames() ([]*proto.Frame, error) {
	data, err := s.ReadAll()
	var p proto.Parser
	return p.Parse(data), err
}

// Close closes the port, only the first call has effect.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.port.Close()
}
