package epd

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/epaper.go/pkg/epd/power"
	"github.com/robotalks/epaper.go/pkg/epd/proto"
	"github.com/robotalks/epaper.go/pkg/epd/session"
	"github.com/robotalks/epaper.go/pkg/epd/uart"
	fx "github.com/robotalks/epaper.go/pkg/framework"
)

type fakePort struct {
	written  bytes.Buffer
	rx       []byte
	writeErr error
	closeErr error
	closed   int
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.written.Write(b)
}

func (p *fakePort) Read(b []byte) (int, error) {
	n := copy(b, p.rx)
	p.rx = p.rx[n:]
	return n, nil
}

func (p *fakePort) Buffered() (int, error) { return len(p.rx), nil }

func (p *fakePort) Close() error {
	p.closed++
	return p.closeErr
}

type fakeGPIO struct {
	mode       power.Scheme
	writes     []power.Level
	setups     int
	releases   int
	writeErr   error
	releaseErr error
}

func (g *fakeGPIO) SetMode(s power.Scheme) error { g.mode = s; return nil }
func (g *fakeGPIO) Mode() power.Scheme           { return g.mode }
func (g *fakeGPIO) Setup(int, power.Level) error { g.setups++; return nil }

func (g *fakeGPIO) Write(_ int, level power.Level) error {
	if g.writeErr != nil {
		return g.writeErr
	}
	g.writes = append(g.writes, level)
	return nil
}

func (g *fakeGPIO) Release() error {
	g.releases++
	return g.releaseErr
}

type displayTestEnv struct {
	port *fakePort
	gpio *fakeGPIO
	d    *Display
}

func newDisplayTestEnv(t *testing.T, mode power.Scheme) *displayTestEnv {
	env := &displayTestEnv{
		port: &fakePort{rx: []byte("OK")},
		gpio: &fakeGPIO{mode: mode},
	}
	d, err := NewDisplay(env.port, env.gpio, NewConfig())
	require.NoError(t, err)
	d.Sequencer().Sleep = func(time.Duration) {}
	env.d = d
	return env
}

func frameBytes(t *testing.T, cmd proto.Command, params ...byte) []byte {
	f, err := proto.Build(cmd, params)
	require.NoError(t, err)
	return f.Bytes()
}

func TestStart(t *testing.T) {
	env := newDisplayTestEnv(t, power.Board)
	_, err := env.d.Session()
	require.True(t, errors.Is(err, ErrNotReady))

	require.NoError(t, env.d.Start())
	require.Equal(t, Ready, env.d.State())
	require.Equal(t, 2, env.gpio.setups)
	require.Equal(t, []power.Level{power.Low, power.High, power.Low}, env.gpio.writes)
	expected := append(frameBytes(t, proto.CmdMemoryMode, byte(proto.MemNAND)), frameBytes(t, proto.CmdHandshake)...)
	require.Equal(t, expected, env.port.written.Bytes())
	require.Empty(t, env.port.rx)

	require.NoError(t, env.d.Do((*session.Session).Update))
	require.Error(t, env.d.Start())

	require.NoError(t, env.d.Close())
	require.NoError(t, env.d.Close())
	require.Equal(t, Closed, env.d.State())
	require.Equal(t, 1, env.port.closed)
	require.Equal(t, 1, env.gpio.releases)
	err = env.d.Do((*session.Session).Update)
	require.True(t, errors.Is(err, ErrNotReady))
}

func TestStartPinMode(t *testing.T) {
	env := newDisplayTestEnv(t, power.BCM)
	err := env.d.Start()
	require.True(t, errors.Is(err, power.ErrPinMode))
	require.Equal(t, Closed, env.d.State())
	require.Zero(t, env.port.written.Len())
	require.Equal(t, 1, env.port.closed)
	require.Equal(t, 1, env.gpio.releases)
}

func TestStartWriteFailure(t *testing.T) {
	env := newDisplayTestEnv(t, power.Board)
	failure := errors.New("unplugged")
	env.port.writeErr = failure
	env.gpio.releaseErr = errors.New("pins busy")
	err := env.d.Start()
	require.True(t, errors.Is(err, failure))
	require.True(t, errors.Is(err, env.gpio.releaseErr))
	require.Equal(t, Closed, env.d.State())
}

type shortPort struct {
	fakePort
	keep int // bytes dropped from the end of a frame when > 0
	err  error
}

func (p *shortPort) Write(b []byte) (int, error) {
	if p.keep > 0 || p.err != nil {
		n, _ := p.fakePort.Write(b[:p.keep])
		return n, p.err
	}
	return p.fakePort.Write(b)
}

func TestWriteFailureClosesDisplay(t *testing.T) {
	eio := errors.New("input/output error")
	testCases := []struct {
		name       string
		keep       int
		err        error
		incomplete bool
	}{
		{"short write", 8, nil, true},
		{"partial write with error", 3, eio, true},
		{"write error", 0, eio, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			port := &shortPort{}
			d, err := NewDisplay(port, power.NoGPIO{}, NewConfig())
			require.NoError(t, err)
			require.NoError(t, d.Start())

			port.keep, port.err = tc.keep, tc.err
			err = d.Do((*session.Session).Clear)
			require.True(t, errors.Is(err, session.ErrWriteFailed))
			require.Equal(t, tc.incomplete, errors.Is(err, session.ErrWriteIncomplete))
			if tc.err != nil {
				require.True(t, errors.Is(err, tc.err))
			}
			require.Equal(t, Closed, d.State())
			require.Equal(t, 1, port.closed)

			err = d.Do(func(*session.Session) error { return errors.New("unreachable") })
			require.True(t, errors.Is(err, ErrNotReady))
		})
	}
}

func TestInvalidParameterKeepsDisplay(t *testing.T) {
	env := newDisplayTestEnv(t, power.Board)
	require.NoError(t, env.d.Start())
	err := env.d.Do(func(s *session.Session) error { return s.DrawPixel(-1, 0) })
	require.True(t, errors.Is(err, proto.ErrInvalidParameter))
	require.Equal(t, Ready, env.d.State())
	require.Zero(t, env.port.closed)
}

func TestCloseAggregatesErrors(t *testing.T) {
	env := newDisplayTestEnv(t, power.Board)
	env.port.closeErr = errors.New("port close")
	env.gpio.releaseErr = errors.New("pins release")
	err := env.d.Close()
	require.True(t, errors.Is(err, env.port.closeErr))
	require.True(t, errors.Is(err, env.gpio.releaseErr))
	require.NoError(t, env.d.Close())
}

func TestNoGPIO(t *testing.T) {
	port := &fakePort{}
	d, err := NewDisplay(port, power.NoGPIO{}, NewConfig())
	require.NoError(t, err)
	require.False(t, d.Sequencer().Enabled())
	require.NoError(t, d.Start())
	require.Equal(t, Ready, d.State())
	require.NoError(t, d.Close())
}

func TestSuspendResume(t *testing.T) {
	env := newDisplayTestEnv(t, power.Board)
	require.Error(t, env.d.Resume())
	require.True(t, errors.Is(env.d.Suspend(), ErrNotReady))
	require.NoError(t, env.d.Start())
	env.port.written.Reset()
	env.gpio.writes = nil

	require.NoError(t, env.d.Suspend())
	require.Equal(t, PinsReady, env.d.State())
	require.Equal(t, frameBytes(t, proto.CmdStopMode), env.port.written.Bytes())
	_, err := env.d.Session()
	require.True(t, errors.Is(err, ErrNotReady))

	require.NoError(t, env.d.Resume())
	require.Equal(t, Ready, env.d.State())
	require.Len(t, env.gpio.writes, 3)
}

func TestResumeFailure(t *testing.T) {
	env := newDisplayTestEnv(t, power.Board)
	require.NoError(t, env.d.Start())
	require.NoError(t, env.d.Suspend())

	env.gpio.writeErr = errors.New("pin busy")
	require.True(t, errors.Is(env.d.Resume(), env.gpio.writeErr))
	require.Equal(t, PinsReady, env.d.State())

	env.gpio.writeErr = nil
	env.port.writeErr = errors.New("unplugged")
	err := env.d.Resume()
	require.True(t, errors.Is(err, env.port.writeErr))
	require.Equal(t, Closed, env.d.State())
	require.Equal(t, 1, env.port.closed)
	require.Equal(t, 1, env.gpio.releases)
}

func TestScope(t *testing.T) {
	env := newDisplayTestEnv(t, power.Board)
	require.NoError(t, env.d.Start())
	failure := errors.New("draw failed")
	env.port.closeErr = errors.New("port close")
	err := env.d.Scope(func(d *Display) error {
		require.Equal(t, Ready, d.State())
		return failure
	})
	require.True(t, errors.Is(err, failure))
	require.True(t, errors.Is(err, env.port.closeErr))
	var errs *fx.AggregatedError
	require.True(t, errors.As(err, &errs))
	require.Equal(t, failure, errs.Errors[0])
	require.Equal(t, Closed, env.d.State())
	require.Equal(t, 1, env.port.closed)
	require.Equal(t, 1, env.gpio.releases)

	env = newDisplayTestEnv(t, power.Board)
	require.NoError(t, env.d.Start())
	require.NoError(t, env.d.Scope(func(*Display) error { return nil }))
	require.Equal(t, Closed, env.d.State())
	require.Equal(t, 1, env.gpio.releases)
}

func TestOpenDeviceNotFound(t *testing.T) {
	conf := NewConfig()
	conf.Devices = []string{t.TempDir() + "/ttyAMA0"}
	_, err := Open(conf)
	require.True(t, errors.Is(err, uart.ErrDeviceNotFound))

	called := false
	err = Run(conf, func(*Display) error {
		called = true
		return nil
	})
	require.True(t, errors.Is(err, uart.ErrDeviceNotFound))
	require.False(t, called)
}

func TestOpenInvalidScheme(t *testing.T) {
	conf := NewConfig()
	conf.PinScheme = "wiringpi"
	_, err := Open(conf)
	require.Error(t, err)
}

func TestNewDisplayInvalidConfig(t *testing.T) {
	conf := NewConfig()
	conf.Encoding = "latin1"
	_, err := NewDisplay(&fakePort{}, power.NoGPIO{}, conf)
	require.Error(t, err)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "pins-ready", PinsReady.String())
	require.Equal(t, "state(9)", State(9).String())
}
