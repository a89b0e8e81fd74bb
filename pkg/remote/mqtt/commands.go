package mqtt

import (
	"context"
	"strings"
)

// Topics under the display ID.
const (
	CmdTopic    = "cmd"
	ResultTopic = "result"
)

// Commands receives command lines on <id>/cmd and publishes the
// results on <id>/result.
type Commands struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	reqCh  chan []byte
	doneCh chan struct{}
}

// NewCommands creates Commands for the display ID.
func NewCommands(q *Queue, id string) *Commands {
	return &Commands{
		Queue:    q,
		SubTopic: id + "/" + CmdTopic,
		PubTopic: id + "/" + ResultTopic,
		reqCh:    make(chan []byte, 1),
		doneCh:   make(chan struct{}),
	}
}

// Requests delivers the received payloads.
func (c *Commands) Requests() <-chan []byte {
	return c.reqCh
}

// Reply publishes the result of a command.
func (c *Commands) Reply(out []byte, err error) error {
	token := c.Queue.Pub(c.PubTopic, FormatResult(out, err))
	token.Wait()
	return token.Error()
}

// Run implements Runnable.
func (c *Commands) Run(ctx context.Context) error {
	sub := c.Queue.Sub(c.SubTopic, c.handleMsg)
	<-ctx.Done()
	close(c.doneCh)
	sub.Close()
	return ctx.Err()
}

func (c *Commands) handleMsg(_ string, payload []byte) {
	select {
	case c.reqCh <- payload:
	case <-c.doneCh:
	}
}

// FormatResult renders "OK" followed by any output, or "ERR message".
func FormatResult(out []byte, err error) []byte {
	if err != nil {
		msg := strings.ReplaceAll(err.Error(), "\n", "; ")
		return []byte("ERR " + msg)
	}
	if len(out) == 0 {
		return []byte("OK")
	}
	return append([]byte("OK\n"), out...)
}
