// Package config loads lspwire settings from TOML files, holds them in an
// atomically swappable store, and reloads them when the file changes.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gossip-lsp/lspwire/transport"
	"github.com/gossip-lsp/lspwire/wire"
)

// Validatable is an optional interface that config structs can implement
// to validate themselves before being swapped in.
type Validatable interface {
	Validate() error
}

// LoadTOML loads a TOML config file into a struct of type T.
// If the file does not exist, it returns the provided defaults.
func LoadTOML[T any](path string, defaults *T) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := new(T)
	if defaults != nil {
		*cfg = *defaults
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if v, ok := any(cfg).(Validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("validating config %s: %w", path, err)
		}
	}

	return cfg, nil
}

// Config is the lspwire settings file.
//
//	endpoint = "tcp://127.0.0.1:9257"
//	buffer_size = 65536
//	max_content_length = 0
//	log_level = "debug"
//	log_format = "json"
type Config struct {
	Endpoint         string `toml:"endpoint"`
	BufferSize       int    `toml:"buffer_size"`
	MaxContentLength int    `toml:"max_content_length"`
	LogLevel         string `toml:"log_level"`
	LogFormat        string `toml:"log_format"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Endpoint:   "stdio",
		BufferSize: 64 * 1024,
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// Validate implements Validatable.
func (c *Config) Validate() error {
	var errs []error
	if _, err := transport.ParseEndpoint(c.Endpoint); err != nil {
		errs = append(errs, err)
	}
	if c.BufferSize < 0 {
		errs = append(errs, fmt.Errorf("buffer_size must not be negative, got %d", c.BufferSize))
	}
	if c.MaxContentLength < 0 {
		errs = append(errs, fmt.Errorf("max_content_length must not be negative, got %d", c.MaxContentLength))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Level parses LogLevel. An empty value means info.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// WireOptions converts the settings into wire.Transport options.
func (c *Config) WireOptions(logger *slog.Logger) []wire.Option {
	return []wire.Option{
		wire.WithLogger(logger),
		wire.WithBufferSize(c.BufferSize),
		wire.WithMaxContentLength(c.MaxContentLength),
	}
}
