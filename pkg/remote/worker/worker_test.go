package worker

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/epaper.go/pkg/epd"
	"github.com/robotalks/epaper.go/pkg/epd/ops"
	"github.com/robotalks/epaper.go/pkg/epd/power"
	"github.com/robotalks/epaper.go/pkg/epd/proto"
	"github.com/robotalks/epaper.go/pkg/epd/session"
)

type fakePort struct {
	bytes.Buffer
	rx    []byte
	short bool
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.short {
		b = b[:len(b)-1]
	}
	return p.Buffer.Write(b)
}

func (p *fakePort) Read(b []byte) (int, error) {
	n := copy(b, p.rx)
	p.rx = p.rx[n:]
	return n, nil
}

func (p *fakePort) Buffered() (int, error) { return len(p.rx), nil }
func (p *fakePort) Close() error           { return nil }

type result struct {
	out []byte
	err error
}

type fakeSource struct {
	reqCh    chan []byte
	resultCh chan result
}

func (s *fakeSource) Requests() <-chan []byte { return s.reqCh }

func (s *fakeSource) Reply(out []byte, err error) error {
	s.resultCh <- result{out: out, err: err}
	return nil
}

func newTestWorker(t *testing.T) (*Worker, *fakePort) {
	port := &fakePort{}
	d, err := epd.NewDisplay(port, power.NoGPIO{}, epd.NewConfig())
	require.NoError(t, err)
	require.NoError(t, d.Start())
	port.Reset()
	return &Worker{Display: d}, port
}

func TestExec(t *testing.T) {
	w, port := newTestWorker(t)
	_, err := w.Exec(`string "hello world" 0 32`)
	require.NoError(t, err)
	f, err := proto.Build(proto.CmdDrawString, []byte{0, 0, 0, 32}, []byte("hello world\x00"))
	require.NoError(t, err)
	require.Equal(t, f.Bytes(), port.Bytes())

	port.rx = []byte("OK")
	out, err := w.Exec("read")
	require.NoError(t, err)
	require.Equal(t, "\"OK\"\n", string(out))

	_, err = w.Exec("circle 1 2")
	require.True(t, errors.Is(err, proto.ErrInvalidParameter))
	_, err = w.Exec("   ")
	require.True(t, errors.Is(err, ops.ErrUnknownOp))
	_, err = w.Exec("blink")
	require.True(t, errors.Is(err, ops.ErrUnknownOp))

	require.NoError(t, firstErr(w.Exec("suspend")))
	require.Equal(t, epd.PinsReady, w.Display.State())
	_, err = w.Exec("update")
	require.True(t, errors.Is(err, epd.ErrNotReady))
	require.NoError(t, firstErr(w.Exec("resume")))
	require.Equal(t, epd.Ready, w.Display.State())
}

func firstErr(_ []byte, err error) error {
	return err
}

func TestRun(t *testing.T) {
	w, port := newTestWorker(t)
	src := &fakeSource{reqCh: make(chan []byte), resultCh: make(chan result, 1)}
	w.Source = src
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	src.reqCh <- []byte("clear")
	res := <-src.resultCh
	require.NoError(t, res.err)
	f, err := proto.Build(proto.CmdClear)
	require.NoError(t, err)
	require.Equal(t, f.Bytes(), port.Bytes())

	src.reqCh <- []byte("nope")
	res = <-src.resultCh
	require.True(t, errors.Is(res.err, ops.ErrUnknownOp))

	cancel()
	require.True(t, errors.Is(<-errCh, context.Canceled))
}

func TestRunStopsWhenDisplayCloses(t *testing.T) {
	w, port := newTestWorker(t)
	src := &fakeSource{reqCh: make(chan []byte, 2), resultCh: make(chan result, 2)}
	w.Source = src
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(context.Background()) }()

	port.short = true
	src.reqCh <- []byte("clear")
	res := <-src.resultCh
	require.True(t, errors.Is(res.err, session.ErrWriteIncomplete))
	err := <-errCh
	require.True(t, errors.Is(err, session.ErrWriteIncomplete))
	require.Equal(t, epd.Closed, w.Display.State())
}
