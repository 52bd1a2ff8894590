// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Engine configuration: defaults, TOML file, environment overrides.

package control

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/momentics/stagebuf/buffer"
)

// Environment variables that override file values.
const (
	EnvInitialCapacity = "STAGEBUF_INITIAL_CAPACITY"
	EnvAlignment       = "STAGEBUF_ALIGNMENT"
	EnvMaxCapacity     = "STAGEBUF_MAX_CAPACITY"
	EnvReadWait        = "STAGEBUF_READ_WAIT"
	EnvLogLevel        = "STAGEBUF_LOG_LEVEL"
)

// BufferConfig holds the [buffer] section.
type BufferConfig struct {
	InitialCapacity int    `toml:"initial_capacity"` // store size for fresh buffers
	Alignment       int    `toml:"alignment"`        // growth granularity
	MaxCapacity     int    `toml:"max_capacity"`     // upper bound for one store
	ReadWait        string `toml:"read_wait"`        // encrypted read readiness wait, e.g. "1s"
}

// Config is the top-level configuration file.
type Config struct {
	Buffer   BufferConfig `toml:"buffer"`
	LogLevel string       `toml:"log_level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Buffer: BufferConfig{
			InitialCapacity: buffer.DefaultCapacity,
			Alignment:       buffer.DefaultAlignment,
			MaxCapacity:     buffer.DefaultMaxCapacity,
			ReadWait:        buffer.DefaultReadWait.String(),
		},
		LogLevel: "info",
	}
}

// LoadConfig reads path (if non-empty) over the defaults, then applies
// environment overrides. A .env file in the working directory, when present,
// is loaded into the environment first without clobbering existing values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, errors.Wrapf(err, "decode config %s", path)
		}
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, errors.Wrap(err, "load .env")
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseConfig decodes TOML text over the defaults. Environment is not consulted.
func ParseConfig(data string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	ints := []struct {
		key string
		dst *int
	}{
		{EnvInitialCapacity, &c.Buffer.InitialCapacity},
		{EnvAlignment, &c.Buffer.Alignment},
		{EnvMaxCapacity, &c.Buffer.MaxCapacity},
	}
	for _, e := range ints {
		v, ok := os.LookupEnv(e.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "parse %s", e.key)
		}
		*e.dst = n
	}
	if v := os.Getenv(EnvReadWait); v != "" {
		c.Buffer.ReadWait = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	b := c.Buffer
	if b.InitialCapacity < 0 {
		return errors.Errorf("initial_capacity must not be negative, got %d", b.InitialCapacity)
	}
	if b.Alignment <= 0 {
		return errors.Errorf("alignment must be positive, got %d", b.Alignment)
	}
	if b.MaxCapacity < b.InitialCapacity {
		return errors.Errorf("max_capacity %d below initial_capacity %d", b.MaxCapacity, b.InitialCapacity)
	}
	if _, err := c.ReadWait(); err != nil {
		return err
	}
	return nil
}

// ReadWait returns the parsed read wait.
func (c *Config) ReadWait() (time.Duration, error) {
	d, err := time.ParseDuration(c.Buffer.ReadWait)
	if err != nil {
		return 0, errors.Wrapf(err, "parse read_wait %q", c.Buffer.ReadWait)
	}
	if d <= 0 {
		return 0, errors.Errorf("read_wait must be positive, got %s", d)
	}
	return d, nil
}

// Options translates the configuration into buffer options.
func (c *Config) Options() []buffer.Option {
	opts := []buffer.Option{
		buffer.WithAlignment(c.Buffer.Alignment),
		buffer.WithMaxCapacity(c.Buffer.MaxCapacity),
	}
	if d, err := c.ReadWait(); err == nil {
		opts = append(opts, buffer.WithReadWait(d))
	}
	return opts
}

// NewBuffer builds a buffer of the configured initial capacity.
func (c *Config) NewBuffer() (*buffer.Buffer, error) {
	return buffer.New(c.Buffer.InitialCapacity, c.Options()...)
}
