// Package config holds the runtime configuration for the peer binary.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Transport names.
const (
	TransportTCP = "tcp"
	TransportWS  = "ws"
)

// Config controls transport selection, buffer sizing, input mode and logging.
type Config struct {
	// Transport selects how the single peer connection is carried: tcp or ws.
	Transport string `yaml:"transport"`

	// ReadBufferSize bounds one chunk read from the connection.
	ReadBufferSize int `yaml:"read_buffer_size"`

	// MaxMessageSize bounds the bytes buffered while waiting for a message
	// delimiter. 0 disables the bound.
	MaxMessageSize int `yaml:"max_message_size"`

	// RawInput switches to keystroke-oriented input with no message framing.
	RawInput bool `yaml:"raw_input"`

	// LogLevel is a zap level name: debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Transport:      TransportTCP,
		ReadBufferSize: 4096,
		MaxMessageSize: 1 << 20,
		LogLevel:       "info",
	}
}

// Load reads a yaml file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the transports and framer cannot work with.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportTCP, TransportWS:
	default:
		return fmt.Errorf("unknown transport %q (want %q or %q)", c.Transport, TransportTCP, TransportWS)
	}
	if c.ReadBufferSize <= 0 {
		return fmt.Errorf("read_buffer_size must be positive, got %d", c.ReadBufferSize)
	}
	if c.MaxMessageSize < 0 {
		return fmt.Errorf("max_message_size must not be negative, got %d", c.MaxMessageSize)
	}
	return nil
}
