// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package config loads the settings used to build string runtimes.
//
// Settings are read, in increasing priority, from built-in defaults, a YAML
// file, STRVAL_* environment variables and bound command line flags.
// Environment names replace dots with underscores, so identifiers.kind is
// STRVAL_IDENTIFIERS_KIND.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/alex60217101990/strval/v1/heap"
	"github.com/alex60217101990/strval/v1/ident"
	"github.com/alex60217101990/strval/v1/logging"
	"github.com/alex60217101990/strval/v1/value"
)

const (
	// EnvPrefix is prepended to environment variable names.
	EnvPrefix = "STRVAL"

	// DefaultName is the config file searched for when no path is given.
	DefaultName = "strval"

	TableMap = "map"
	TableLRU = "lru"

	FormatText = "text"
	FormatJSON = "json"
)

// Config holds all settings.
type Config struct {
	Identifiers Identifiers `mapstructure:"identifiers" json:"identifiers"`
	Heap        Heap        `mapstructure:"heap" json:"heap"`
	Log         Log         `mapstructure:"log" json:"log"`
}

// Identifiers selects the identifier table.
type Identifiers struct {
	Kind string `mapstructure:"kind" json:"kind"`
	Size int    `mapstructure:"size" json:"size"`
}

// Heap configures the collector.
type Heap struct {
	CollectInterval time.Duration `mapstructure:"collect_interval" json:"collect_interval"`
}

// Log configures logging.
type Log struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// Error reports an invalid setting.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("identifiers.kind", TableMap)
	v.SetDefault("identifiers.size", 4096)
	v.SetDefault("heap.collect_interval", time.Duration(0))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", FormatText)
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Identifiers: Identifiers{Kind: TableMap, Size: 4096},
		Log:         Log{Level: "info", Format: FormatText},
	}
}

// Load reads the configuration. An empty path searches the working directory
// for strval.yaml and silently falls back to defaults when none exists; an
// explicit path must exist. flags may be nil; flag names must match setting
// keys, e.g. "log.level".
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(DefaultName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	switch c.Identifiers.Kind {
	case TableMap:
	case TableLRU:
		if c.Identifiers.Size <= 0 {
			return &Error{Field: "identifiers.size", Message: "must be positive for an lru table"}
		}
	default:
		return &Error{Field: "identifiers.kind", Message: fmt.Sprintf("unknown table kind %q", c.Identifiers.Kind)}
	}

	if c.Heap.CollectInterval < 0 {
		return &Error{Field: "heap.collect_interval", Message: "must not be negative"}
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return &Error{Field: "log.level", Message: err.Error()}
	}

	switch c.Log.Format {
	case FormatText, FormatJSON:
	default:
		return &Error{Field: "log.format", Message: fmt.Sprintf("unknown format %q", c.Log.Format)}
	}
	return nil
}

// NewLogger returns a logger with the configured level and format.
func (c *Config) NewLogger() (*logging.StandardLogger, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, &Error{Field: "log.level", Message: err.Error()}
	}
	logger := logging.New()
	logger.SetLevel(level)
	if c.Log.Format == FormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger, nil
}

// NewIdentifierTable returns the configured identifier table.
func (c *Config) NewIdentifierTable(logger logging.Logger) (value.IdentifierTable, error) {
	switch c.Identifiers.Kind {
	case TableLRU:
		t, err := ident.NewLRUTable(c.Identifiers.Size, ident.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("identifier table: %w", err)
		}
		return t, nil
	case TableMap, "":
		return ident.NewTable(), nil
	}
	return nil, &Error{Field: "identifiers.kind", Message: fmt.Sprintf("unknown table kind %q", c.Identifiers.Kind)}
}

// NewRuntime returns a runtime using the configured identifier table.
func (c *Config) NewRuntime(logger logging.Logger) (*value.Runtime, error) {
	t, err := c.NewIdentifierTable(logger)
	if err != nil {
		return nil, err
	}
	return value.NewRuntime(value.WithIdentifierTable(t)), nil
}

// NewHeap returns a heap for rt. The identifier table is swept on every
// collection when it supports sweeping, and the background collector is
// started when an interval is configured; the caller stops it.
func (c *Config) NewHeap(rt *value.Runtime, logger logging.Logger) *heap.Heap {
	opts := []heap.Opt{heap.WithLogger(logger)}
	if s, ok := rt.Identifiers().(heap.IdentifierSweeper); ok {
		opts = append(opts, heap.WithIdentifierSweeper(s))
	}
	h := heap.New(opts...)
	h.StartCollector(c.Heap.CollectInterval)
	return h
}
