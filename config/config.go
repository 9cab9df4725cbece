// Package config handles qtpeek.toml session configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/qtpeek/qtpeek/decode"
	"github.com/qtpeek/qtpeek/errors"
	"github.com/qtpeek/qtpeek/layout"
)

// FileName is the configuration file qtpeek looks for.
const FileName = "qtpeek.toml"

// Config represents a qtpeek.toml session configuration.
type Config struct {
	Limits Limits `toml:"limits"`
	Layout Layout `toml:"layout"`
	Log    Log    `toml:"log"`

	// Path is the file the configuration was loaded from (set at load time).
	Path string `toml:"-"`
}

// Limits tunes the safety ceilings guarding raw-memory traversal.
type Limits struct {
	Ref  int64 `toml:"ref"`
	Size int64 `toml:"size"`
}

// Layout selects the framework layout profile.
type Layout struct {
	Version string `toml:"version"`
}

// Log configures diagnostic output.
type Log struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Limits: Limits{Ref: decode.DefaultRefLimit, Size: decode.DefaultSizeLimit},
		Layout: Layout{Version: layout.VersionQt4},
		Log:    Log{Level: "warn"},
	}
}

// Load parses a qtpeek.toml file. Omitted fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err,
			fmt.Sprintf("cannot read %s", path))
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err,
			fmt.Sprintf("parse error in %s", path))
	}

	if c.Path, err = filepath.Abs(path); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err,
			fmt.Sprintf("cannot resolve path %s", path))
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FindAndLoad walks up from startDir looking for a qtpeek.toml file. Returns
// the defaults if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, startDir)
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Validate rejects values the engine would refuse or silently misbehave on.
func (c *Config) Validate() error {
	if c.Limits.Ref <= 0 {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("limits.ref must be positive, got %d", c.Limits.Ref).
			Build()
	}
	if c.Limits.Size <= 0 {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("limits.size must be positive, got %d", c.Limits.Size).
			Build()
	}
	if c.Layout.Version != layout.VersionQt4 {
		return errors.LayoutMismatch(errors.PhaseConfig,
			"unsupported framework layout version "+c.Layout.Version)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("log.level must be one of debug, info, warn, error").
			Build()
	}
	return nil
}

// EngineOptions maps the configuration onto engine tunables.
func (c *Config) EngineOptions() decode.Options {
	return decode.Options{
		RefLimit:      c.Limits.Ref,
		SizeLimit:     c.Limits.Size,
		LayoutVersion: c.Layout.Version,
	}
}
