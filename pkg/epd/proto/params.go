package proto

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding"
)

// Bytes checks each value fits in a byte and returns them as parameter bytes.
// A single value is a one-element sequence.
func Bytes(vals ...int) ([]byte, error) {
	for n, v := range vals {
		if v < 0 || v > 0xff {
			return nil, InvalidParameter(fmt.Sprintf("param[%d]", n), v, 0xff)
		}
	}
	b := make([]byte, len(vals))
	for n, v := range vals {
		b[n] = byte(v)
	}
	return b, nil
}

// Shorts encodes each value as 2 bytes, most significant byte first.
// All values are checked before anything is encoded.
func Shorts(vals ...int) ([]byte, error) {
	for n, v := range vals {
		if v < 0 || v > 0xffff {
			return nil, InvalidParameter(fmt.Sprintf("short[%d]", n), v, 0xffff)
		}
	}
	b := make([]byte, 2*len(vals))
	for n, v := range vals {
		binary.BigEndian.PutUint16(b[2*n:], uint16(v))
	}
	return b, nil
}

// Uint16s decodes big-endian shorts, the inverse of Shorts.
func Uint16s(b []byte) ([]uint16, error) {
	if len(b)%2 != 0 {
		return nil, Malformed("shorts", fmt.Sprintf("odd length %d", len(b)))
	}
	vals := make([]uint16, len(b)/2)
	for n := range vals {
		vals[n] = binary.BigEndian.Uint16(b[2*n:])
	}
	return vals, nil
}

// Text encodes s with enc and appends the terminating zero.
// A nil enc sends the UTF-8 bytes as they are.
func Text(s string, enc encoding.Encoding) ([]byte, error) {
	raw := []byte(s)
	if enc != nil {
		var err error
		if raw, err = enc.NewEncoder().Bytes(raw); err != nil {
			return nil, Malformed("text", err.Error())
		}
	}
	if n := bytes.IndexByte(raw, 0); n >= 0 {
		return nil, Malformed("text", fmt.Sprintf("zero byte at %d", n))
	}
	return append(raw, 0), nil
}

// StringParams lays out a positioned string: x, y as shorts, then text.
// text must already be encoded and terminated, see Text.
func StringParams(text []byte, x, y int) ([]byte, error) {
	pos, err := Shorts(x, y)
	if err != nil {
		return nil, err
	}
	return append(pos, text...), nil
}
