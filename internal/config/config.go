// Package config resolves runtime settings from the environment and
// command-line flags. Flags override environment values.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/quentinrf/ambient-light/internal/domain"
	"github.com/quentinrf/ambient-light/internal/ports"
	"github.com/quentinrf/ambient-light/pkg/tlsconfig"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Sensor kinds
const (
	SensorAuto   = "auto"
	SensorMock   = "mock"
	SensorBH1750 = "bh1750"
)

// Config holds application configuration
type Config struct {
	Listen          bool
	IntervalSeconds float64
	Window          int
	Bare            bool

	Sensor     string // "auto" | "mock" | "bh1750"
	I2CBus     string // empty disables the I2C probe in auto mode
	I2CAddress uint16
	SysfsRoot  string

	MockSeed    int64   // zero seeds from the clock
	MockDropout float64 // probability a mock read reports no value

	DBPath    string        // empty keeps history in memory
	Retention time.Duration // zero disables pruning

	GRPCAddr string // empty disables the gRPC server
	TLS      tlsconfig.Files

	MQTTServer         string // empty disables MQTT
	MQTTClientID       string
	MQTTTopic          string
	MQTTDiscoveryTopic string
	MQTTUser           string
	MQTTPass           string

	LogLevel string
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		IntervalSeconds: ports.DefaultInterval.Seconds(),
		Window:          domain.DefaultWindowSize,
		Sensor:          SensorAuto,
		I2CAddress:      0x23,
		SysfsRoot:       "/sys/bus/iio/devices",
		Retention:       ports.DefaultRetention,
		MQTTClientID:    "als-client",
		MQTTTopic:       "als/lux",
		LogLevel:        "info",
	}
}

// FromEnv reads configuration from environment variables on top of Default
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("ALS_INTERVAL"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("%w: ALS_INTERVAL %q is not a number", ErrInvalidConfig, v)
		}
		cfg.IntervalSeconds = f
	}
	if v, ok := lookup("ALS_WINDOW"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: ALS_WINDOW %q is not an integer", ErrInvalidConfig, v)
		}
		cfg.Window = n
	}
	if v, ok := lookup("ALS_I2C_ADDRESS"); ok && v != "" {
		n, err := strconv.ParseUint(v, 0, 16)
		if err != nil {
			return cfg, fmt.Errorf("%w: ALS_I2C_ADDRESS %q: %v", ErrInvalidConfig, v, err)
		}
		cfg.I2CAddress = uint16(n)
	}
	if v, ok := lookup("ALS_MOCK_SEED"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("%w: ALS_MOCK_SEED %q is not an integer", ErrInvalidConfig, v)
		}
		cfg.MockSeed = n
	}
	if v, ok := lookup("ALS_MOCK_DROPOUT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("%w: ALS_MOCK_DROPOUT %q is not a number", ErrInvalidConfig, v)
		}
		cfg.MockDropout = f
	}
	if v, ok := lookup("ALS_RETENTION"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: ALS_RETENTION %q: %v", ErrInvalidConfig, v, err)
		}
		cfg.Retention = d
	}

	str("ALS_SENSOR", &cfg.Sensor)
	str("ALS_I2C_BUS", &cfg.I2CBus)
	str("ALS_SYSFS_ROOT", &cfg.SysfsRoot)
	str("ALS_DB_PATH", &cfg.DBPath)
	str("ALS_GRPC_ADDR", &cfg.GRPCAddr)
	str("TLS_CERT", &cfg.TLS.Cert)
	str("TLS_KEY", &cfg.TLS.Key)
	str("TLS_CA", &cfg.TLS.CA)
	str("MQTT_SERVER", &cfg.MQTTServer)
	str("MQTT_CLIENT_ID", &cfg.MQTTClientID)
	str("MQTT_TOPIC", &cfg.MQTTTopic)
	str("MQTT_DISCOVERY_TOPIC", &cfg.MQTTDiscoveryTopic)
	str("MQTT_USER", &cfg.MQTTUser)
	str("MQTT_PASS", &cfg.MQTTPass)
	str("LOG_LEVEL", &cfg.LogLevel)

	return cfg, nil
}

// BindFlags registers every setting on fs, using the current values as defaults
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.Listen, "listen", "l", c.Listen, "continuously print readings until interrupted")
	fs.Float64VarP(&c.IntervalSeconds, "interval", "i", c.IntervalSeconds, "seconds between readings in listen mode")
	fs.IntVar(&c.Window, "window-average", c.Window, "number of readings in the moving average")
	fs.BoolVar(&c.Bare, "bare", c.Bare, "print only the averaged value")

	fs.StringVar(&c.Sensor, "sensor", c.Sensor, "sensor source: auto|mock|bh1750")
	fs.StringVar(&c.I2CBus, "i2c-bus", c.I2CBus, "I2C bus for a BH1750 (e.g. '1' -> /dev/i2c-1)")
	fs.Uint16Var(&c.I2CAddress, "i2c-address", c.I2CAddress, "BH1750 I2C address (decimal or 0x hex)")
	fs.StringVar(&c.SysfsRoot, "sysfs-root", c.SysfsRoot, "IIO device directory")
	fs.Int64Var(&c.MockSeed, "mock-seed", c.MockSeed, "seed for --sensor mock (0 seeds from the clock)")
	fs.Float64Var(&c.MockDropout, "mock-dropout", c.MockDropout, "probability a mock read has no value")

	fs.StringVar(&c.DBPath, "record-db", c.DBPath, "SQLite file for reading history")
	fs.DurationVar(&c.Retention, "retention", c.Retention, "how long recorded readings are kept (0 keeps all)")

	fs.StringVar(&c.GRPCAddr, "grpc-addr", c.GRPCAddr, "serve the AmbientLight gRPC API on this address")
	fs.StringVar(&c.TLS.Cert, "tls-cert", c.TLS.Cert, "server certificate (PEM)")
	fs.StringVar(&c.TLS.Key, "tls-key", c.TLS.Key, "server private key (PEM)")
	fs.StringVar(&c.TLS.CA, "tls-ca", c.TLS.CA, "CA certificate for client verification (PEM)")

	fs.StringVar(&c.MQTTServer, "mqtt-server", c.MQTTServer, "MQTT server (tcp://host:port)")
	fs.StringVar(&c.MQTTClientID, "mqtt-client-id", c.MQTTClientID, "MQTT client id")
	fs.StringVar(&c.MQTTTopic, "mqtt-topic", c.MQTTTopic, "MQTT state topic")
	fs.StringVar(&c.MQTTDiscoveryTopic, "mqtt-discovery-topic", c.MQTTDiscoveryTopic, "Home Assistant discovery topic")
	fs.StringVar(&c.MQTTUser, "mqtt-user", c.MQTTUser, "MQTT username")
	fs.StringVar(&c.MQTTPass, "mqtt-pass", c.MQTTPass, "MQTT password")

	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "diagnostic level: debug|info|warn|error")
}

// Validate checks the settings before any sensor interaction
func (c Config) Validate() error {
	if math.IsNaN(c.IntervalSeconds) || math.IsInf(c.IntervalSeconds, 0) || c.Interval() <= 0 {
		return fmt.Errorf("%w: interval must be a positive number of seconds", ErrInvalidConfig)
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, domain.ErrInvalidWindowSize)
	}
	switch c.Sensor {
	case SensorAuto, SensorMock, SensorBH1750:
	default:
		return fmt.Errorf("%w: unknown sensor %q", ErrInvalidConfig, c.Sensor)
	}
	if math.IsNaN(c.MockDropout) || c.MockDropout < 0 || c.MockDropout > 1 {
		return fmt.Errorf("%w: mock dropout must be within [0, 1]", ErrInvalidConfig)
	}
	if c.Retention < 0 {
		return fmt.Errorf("%w: retention cannot be negative", ErrInvalidConfig)
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.TLS.Enabled() && c.GRPCAddr == "" {
		return fmt.Errorf("%w: TLS files given without --grpc-addr", ErrInvalidConfig)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Interval returns the polling period
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds * float64(time.Second))
}

// Level parses LogLevel
func (c Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return lvl, nil
}
