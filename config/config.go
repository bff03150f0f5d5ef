// SPDX-License-Identifier: MIT

// Package config holds the hpp batch configuration.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"gitlab.com/fisherprime/hpp/types"
)

type (
	// Config defines configuration options for scanning a header tree.
	Config struct {
		// Root is the directory walked for headers.
		Root string `toml:"root"`

		// Extensions selects the files to parse, matched case-insensitively.
		Extensions types.StringSlice `toml:"extensions"`

		// Exclude lists directory names that are not descended into.
		Exclude types.StringSlice `toml:"exclude"`

		// Workers bounds the number of files parsed concurrently.
		Workers int `toml:"workers"`

		// Format selects the report: text, json, log or outline.
		Format string `toml:"format"`

		// Strict turns any per-file failure into a failed run.
		Strict bool `toml:"strict"`

		Debug    bool   `toml:"debug"`
		LogLevel string `toml:"log_level"`
	}
)

// Report formats.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatLog     = "log"
	FormatOutline = "outline"
)

const (
	defRoot      = "."
	defExtension = ".h"
	defFormat    = FormatText
	defLogLevel  = "info"
)

// Configuration errors.
var (
	ErrLoadConfig    = errors.New("failed to load config")
	ErrUnknownFormat = errors.New("unknown report format")
	ErrUnknownKeys   = errors.New("unknown config keys")
)

// DefConfig obtains the default Config.
func DefConfig() *Config {
	return &Config{
		Root:       defRoot,
		Extensions: types.StringSlice{defExtension},
		Workers:    runtime.NumCPU(),
		Format:     defFormat,
		LogLevel:   defLogLevel,
	}
}

// Load decodes a TOML file over the defaults & validates the result.
func Load(path string) (cfg *Config, err error) {
	cfg = DefConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %v", ErrLoadConfig, path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w (%s): %v", ErrUnknownKeys, path, undecoded)
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return
}

// Validate populates missing Config entries with defaults & normalizes the rest.
func (c *Config) Validate() error {
	if c.Root == "" {
		c.Root = defRoot
	}
	if c.Workers < 1 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = defLogLevel
	}

	c.Extensions = c.Extensions.Map(normalizeExtension)
	if len(c.Extensions) < 1 {
		c.Extensions = types.StringSlice{defExtension}
	}

	switch c.Format = strings.ToLower(c.Format); c.Format {
	case "":
		c.Format = defFormat
	case FormatText, FormatJSON, FormatLog, FormatOutline:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, c.Format)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	return nil
}

// Level obtains the configured logrus.Level, debug overriding the log level.
func (c *Config) Level() logrus.Level {
	if c.Debug {
		return logrus.DebugLevel
	}

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}

	return level
}

// normalizeExtension lower-cases an extension & ensures the leading dot.
func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}

	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return ext
}
