package session

import (
	"errors"
	"fmt"

	"github.com/robotalks/epaper.go/pkg/epd/proto"
)

var (
	// ErrWriteIncomplete indicates the port accepted only part of a frame.
	// The controller has lost framing and the link must be reset.
	ErrWriteIncomplete = errors.New("write incomplete")
	// ErrWriteFailed matches every failed frame write, short or not.
	// The receiver can't be trusted to be in frame afterwards.
	ErrWriteFailed = errors.New("write failed")
	// ErrClosed indicates the session is already closed.
	ErrClosed = errors.New("session closed")
)

// WriteIncompleteError wraps a short write, Err is the port error if any.
type WriteIncompleteError struct {
	Command proto.Command
	Written int
	Want    int
	Err     error
}

// Error implements error.
func (e *WriteIncompleteError) Error() string {
	msg := fmt.Sprintf("%s: wrote %d of %d bytes", e.Command, e.Written, e.Want)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the port error.
func (e *WriteIncompleteError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrWriteIncomplete) true.
func (e *WriteIncompleteError) Is(target error) bool {
	return target == ErrWriteIncomplete || target == ErrWriteFailed
}

// WriteError is a port error with nothing of the frame written.
type WriteError struct {
	Command proto.Command
	Err     error
}

// Error implements error.
func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Command, e.Err)
}

// Unwrap returns the port error.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrWriteFailed) true.
func (e *WriteError) Is(target error) bool {
	return target == ErrWriteFailed
}
