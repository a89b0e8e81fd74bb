// Package worker executes remote command lines on the display from a
// single goroutine.
package worker

import (
	"bytes"
	"context"
	"fmt"

	shlex "github.com/flynn-archive/go-shlex"
	"github.com/golang/glog"

	"github.com/robotalks/epaper.go/pkg/epd"
	"github.com/robotalks/epaper.go/pkg/epd/ops"
	"github.com/robotalks/epaper.go/pkg/epd/proto"
	"github.com/robotalks/epaper.go/pkg/epd/session"
)

// Source delivers command lines and takes their results.
type Source interface {
	Requests() <-chan []byte
	Reply(out []byte, err error) error
}

// Worker owns the display, requests are executed one at a time.
type Worker struct {
	Display *epd.Display
	Source  Source
}

// Run implements Runnable. It returns once a failed write has closed
// the display.
func (w *Worker) Run(ctx context.Context) error {
	reqs := w.Source.Requests()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line := <-reqs:
			out, err := w.Exec(string(line))
			if err != nil {
				glog.Warningf("%q: %v", line, err)
			} else {
				glog.V(1).Infof("%q: OK", line)
			}
			if err := w.Source.Reply(out, err); err != nil {
				glog.Errorf("reply %q: %v", line, err)
			}
			if w.Display.State() == epd.Closed {
				return fmt.Errorf("display closed: %w", err)
			}
		}
	}
}

// Exec runs one command line like `string "hello world" 0 32`.
// suspend and resume act on the display itself.
func (w *Worker) Exec(line string) ([]byte, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return nil, proto.Malformed("line", err.Error())
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: empty line", ops.ErrUnknownOp)
	}
	switch args[0] {
	case "suspend":
		return nil, w.Display.Suspend()
	case "resume":
		return nil, w.Display.Resume()
	}
	var out bytes.Buffer
	err = w.Display.Do(func(s *session.Session) error {
		return ops.Exec(s, args, &out)
	})
	return out.Bytes(), err
}
