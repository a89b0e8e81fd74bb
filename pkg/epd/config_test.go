package epd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/robotalks/epaper.go/pkg/epd/power"
	"github.com/robotalks/epaper.go/pkg/epd/proto"
	"github.com/robotalks/epaper.go/pkg/epd/uart"
)

func TestDefaultConfig(t *testing.T) {
	conf := NewConfig()
	require.NoError(t, conf.Validate())
	require.Equal(t, uart.DefaultBaud, conf.Baud)
	require.Equal(t, 2*time.Second, conf.ReadTimeout)

	conf.Devices[0] = "/dev/null"
	require.NotEqual(t, "/dev/null", Default().Devices[0])

	scheme, err := conf.Scheme()
	require.NoError(t, err)
	require.Equal(t, power.Board, scheme)
	mem, err := conf.Memory()
	require.NoError(t, err)
	require.Equal(t, proto.MemNAND, mem)
	enc, err := conf.TextEncoding()
	require.NoError(t, err)
	require.Nil(t, enc)
}

func TestLoad(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "epd.yaml")
	require.NoError(t, os.WriteFile(fn, []byte(`
devices:
  - /dev/ttyUSB0
read_timeout: 500ms
gpio: none
memory_mode: tf
encoding: gbk
id: lobby
`), 0644))
	conf, err := Load(fn)
	require.NoError(t, err)
	require.Equal(t, []string{"/dev/ttyUSB0"}, conf.Devices)
	require.Equal(t, 500*time.Millisecond, conf.ReadTimeout)
	require.Equal(t, uart.DefaultBaud, conf.Baud)
	require.Equal(t, power.DriverNone, conf.GPIO)
	require.Equal(t, "lobby", conf.ID)
	mem, err := conf.Memory()
	require.NoError(t, err)
	require.Equal(t, proto.MemTF, mem)
	enc, err := conf.TextEncoding()
	require.NoError(t, err)
	require.Equal(t, simplifiedchinese.GBK, enc)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
	}{
		{"no devices", func(c *Config) { c.Devices = nil }},
		{"baud", func(c *Config) { c.Baud = 0 }},
		{"timeout", func(c *Config) { c.ReadTimeout = -time.Second }},
		{"gpio", func(c *Config) { c.GPIO = "sysfs" }},
		{"scheme", func(c *Config) { c.PinScheme = "wiringpi" }},
		{"memory", func(c *Config) { c.MemoryMode = "usb" }},
		{"encoding", func(c *Config) { c.Encoding = "big5" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := NewConfig()
			tc.modify(conf)
			require.Error(t, conf.Validate())
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "epd.yaml")
	require.NoError(t, os.WriteFile(fn, []byte("baud: -1\n"), 0644))
	_, err := Load(fn)
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
