package epd

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/epaper.go/pkg/epd/power"
	"github.com/robotalks/epaper.go/pkg/epd/proto"
	"github.com/robotalks/epaper.go/pkg/epd/uart"
)

// Config provides the options to open the display.
type Config struct {
	// Devices are the serial device candidates, the first existing one is used.
	Devices     []string      `yaml:"devices"`
	Baud        int           `yaml:"baud"`
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// GPIO is the pin driver: auto, periph or none.
	GPIO string `yaml:"gpio"`
	// PinScheme is the pin numbering, board or bcm.
	PinScheme string `yaml:"pin_scheme"`

	// MemoryMode is where fonts and pictures are loaded from: nand or tf.
	MemoryMode string `yaml:"memory_mode"`
	// Encoding of text sent with draw-string: utf-8 or gbk.
	Encoding string `yaml:"encoding"`

	// MQTTBrokerURL is used by the daemon,
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string `yaml:"mqtt_url"`
	// ID names the display in MQTT topics, the machine id when empty.
	ID string `yaml:"id"`
}

var defaultConfig = Config{
	Devices:       uart.DefaultDevices,
	Baud:          uart.DefaultBaud,
	ReadTimeout:   uart.DefaultReadTimeout,
	GPIO:          power.DriverAuto,
	PinScheme:     "board",
	MemoryMode:    "nand",
	Encoding:      "utf-8",
	MQTTBrokerURL: "mqtt://localhost:1883/epaper/",
}

func init() {
	if val := os.Getenv("EPD_DEVICE"); val != "" {
		defaultConfig.Devices = strings.Split(val, ",")
	}
	if val := os.Getenv("EPD_GPIO"); val != "" {
		defaultConfig.GPIO = val
	}
	if val := os.Getenv("EPD_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
}

type devicesFlag struct {
	devices *[]string
}

func (f devicesFlag) String() string {
	if f.devices == nil {
		return ""
	}
	return strings.Join(*f.devices, ",")
}

func (f devicesFlag) Set(val string) error {
	*f.devices = strings.Split(val, ",")
	return nil
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Var(devicesFlag{&defaultConfig.Devices}, "device", "Serial devices to try, comma separated")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial baud rate")
	flag.DurationVar(&defaultConfig.ReadTimeout, "read-timeout", defaultConfig.ReadTimeout, "Serial read timeout")
	flag.StringVar(&defaultConfig.GPIO, "gpio", defaultConfig.GPIO, "GPIO driver: auto, periph, none")
	flag.StringVar(&defaultConfig.PinScheme, "pin-scheme", defaultConfig.PinScheme, "GPIO pin numbering: board, bcm")
	flag.StringVar(&defaultConfig.MemoryMode, "memory", defaultConfig.MemoryMode, "Storage of fonts and pictures: nand, tf")
	flag.StringVar(&defaultConfig.Encoding, "encoding", defaultConfig.Encoding, "Text encoding: utf-8, gbk")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Display ID in MQTT topics")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Devices = append([]string(nil), defaultConfig.Devices...)
	return &conf
}

// Load reads a YAML file over the defaults.
func Load(fn string) (*Config, error) {
	data, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	conf := NewConfig()
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", fn, err)
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", fn, err)
	}
	return conf, nil
}

// Validate checks the options.
func (c *Config) Validate() error {
	if len(c.Devices) == 0 {
		return fmt.Errorf("at least one serial device is required")
	}
	if c.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("invalid read timeout %s", c.ReadTimeout)
	}
	switch c.GPIO {
	case power.DriverAuto, power.DriverPeriph, power.DriverNone, "":
	default:
		return fmt.Errorf("unknown GPIO driver %q", c.GPIO)
	}
	if _, err := power.ParseScheme(c.PinScheme); err != nil {
		return err
	}
	if _, err := c.Memory(); err != nil {
		return err
	}
	if _, err := c.TextEncoding(); err != nil {
		return err
	}
	return nil
}

// Scheme returns the parsed pin numbering.
func (c *Config) Scheme() (power.Scheme, error) {
	return power.ParseScheme(c.PinScheme)
}

// Memory returns the parsed memory mode.
func (c *Config) Memory() (proto.MemoryMode, error) {
	switch strings.ToLower(c.MemoryMode) {
	case "nand", "":
		return proto.MemNAND, nil
	case "tf", "sd":
		return proto.MemTF, nil
	}
	return proto.MemNAND, fmt.Errorf("unknown memory mode %q", c.MemoryMode)
}

// TextEncoding returns the encoding for draw-string, nil for UTF-8.
func (c *Config) TextEncoding() (encoding.Encoding, error) {
	switch strings.ToLower(c.Encoding) {
	case "utf-8", "utf8", "":
		return nil, nil
	case "gbk":
		return simplifiedchinese.GBK, nil
	case "gb18030":
		return simplifiedchinese.GB18030, nil
	}
	return nil, fmt.Errorf("unknown text encoding %q", c.Encoding)
}
