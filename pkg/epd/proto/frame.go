package proto

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// FrameStart is the first byte of every frame.
	FrameStart byte = 0xA5
	// FrameOverhead is the number of bytes in a frame besides the parameters.
	FrameOverhead = 9
	// MaxParams is the largest parameter region the 16-bit length can describe.
	MaxParams = 0xffff - FrameOverhead
)

// frameEnd terminates the command and parameters of every frame.
var frameEnd = [4]byte{0xCC, 0x33, 0xC3, 0x3C}

// FrameEnd returns the 4-byte end marker.
func FrameEnd() [4]byte {
	return frameEnd
}

// Frame is a command with its encoded parameters.
type Frame struct {
	Command Command
	Params  []byte
}

// NewFrame validates a command and byte-sized parameters given as integers
// and builds the frame. Nothing is built if any value is out of range.
func NewFrame(cmd int, params ...int) (*Frame, error) {
	if cmd < 0 || cmd > 0xff {
		return nil, InvalidParameter("command", cmd, 0xff)
	}
	data, err := Bytes(params...)
	if err != nil {
		return nil, err
	}
	return Build(Command(cmd), data)
}

// Build concatenates already encoded parameter parts into a frame.
func Build(cmd Command, parts ...[]byte) (*Frame, error) {
	var size int
	for _, part := range parts {
		size += len(part)
	}
	if size > MaxParams {
		return nil, InvalidParameter("params.len", size, MaxParams)
	}
	f := &Frame{Command: cmd, Params: make([]byte, 0, size)}
	for _, part := range parts {
		f.Params = append(f.Params, part...)
	}
	return f, nil
}

// Len returns the total encoded length, which is also the length field.
func (f *Frame) Len() int {
	return FrameOverhead + len(f.Params)
}

// Bytes returns encoded bytes for sending.
func (f *Frame) Bytes() []byte {
	n := f.Len()
	b := make([]byte, n)
	b[0] = FrameStart
	binary.BigEndian.PutUint16(b[1:3], uint16(n))
	b[3] = byte(f.Command)
	copy(b[4:], f.Params)
	copy(b[n-5:n-1], frameEnd[:])
	b[n-1] = Checksum(b[:n-1])
	return b
}

// WriteTo writes encoded bytes.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	b := f.Bytes()
	n, err := w.Write(b)
	if err == nil && n != len(b) {
		err = io.ErrShortWrite
	}
	return int64(n), err
}

// String formats the frame for logs.
func (f *Frame) String() string {
	return fmt.Sprintf("%s[% x]", f.Command, f.Params)
}

// Checksum calculates the parity byte, the XOR of all bytes in data.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum ^= b
	}
	return sum
}

// VerifyChecksum checks the last byte of frame against the XOR of the others.
func VerifyChecksum(frame []byte) error {
	if len(frame) < 1 {
		return ErrBadLength
	}
	last := len(frame) - 1
	if Checksum(frame[:last]) != frame[last] {
		return ErrChecksum
	}
	return nil
}

// Decode parses one complete frame.
func Decode(b []byte) (*Frame, error) {
	if len(b) < FrameOverhead {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadLength, len(b))
	}
	if b[0] != FrameStart {
		return nil, ErrBadStart
	}
	if n := int(binary.BigEndian.Uint16(b[1:3])); n != len(b) {
		return nil, fmt.Errorf("%w: field %d, got %d bytes", ErrBadLength, n, len(b))
	}
	n := len(b)
	if !bytes.Equal(b[n-5:n-1], frameEnd[:]) {
		return nil, ErrBadEnd
	}
	if err := VerifyChecksum(b); err != nil {
		return nil, err
	}
	return &Frame{
		Command: Command(b[3]),
		Params:  append([]byte{}, b[4:n-5]...),
	}, nil
}
