package proto

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter indicates a command or parameter value out of range.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrBadStart indicates the frame doesn't begin with the start marker.
	ErrBadStart = errors.New("bad frame start")
	// ErrBadLength indicates the length field doesn't match the frame.
	ErrBadLength = errors.New("bad frame length")
	// ErrBadEnd indicates the end marker is damaged.
	ErrBadEnd = errors.New("bad frame end")
	// ErrChecksum indicates the parity byte doesn't match.
	ErrChecksum = errors.New("checksum mismatch")
)

// ParamError reports the value rejected by the encoder.
type ParamError struct {
	// What names the rejected value, e.g. "command" or "param[3]".
	What  string
	Value int
	// Max is the largest accepted value.
	Max int
	// Reason replaces the range message when the value isn't a number at all.
	Reason string
}

// Error implements error.
func (e *ParamError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid parameter %s: %s", e.What, e.Reason)
	}
	return fmt.Sprintf("invalid parameter %s=%d (want 0..%d)", e.What, e.Value, e.Max)
}

// Is makes errors.Is(err, ErrInvalidParameter) true.
func (e *ParamError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// Malformed builds a ParamError for a value which can't be encoded at all.
func Malformed(what, reason string) error {
	return &ParamError{What: what, Reason: reason}
}

// InvalidParameter builds a ParamError for a value outside 0..max.
func InvalidParameter(what string, value, max int) error {
	return &ParamError{What: what, Value: value, Max: max}
}
