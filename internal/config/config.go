// Package config handles converter configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Faultbox/bump2normal/internal/codec"
	"github.com/Faultbox/bump2normal/internal/logger"
	"github.com/Faultbox/bump2normal/internal/normalmap"
)

// Config holds all converter settings.
type Config struct {
	Conversion ConversionConfig `yaml:"conversion"`
	Output     OutputConfig     `yaml:"output"`
	Codec      CodecConfig      `yaml:"codec"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ConversionConfig holds normal map generation settings.
type ConversionConfig struct {
	Depth    float64 `yaml:"depth"`    // z magnitude of gradient vectors
	Channel  string  `yaml:"channel"`  // red, green, blue, alpha or luma
	Parallel bool    `yaml:"parallel"` // fan out edge and pixel passes
	Workers  int     `yaml:"workers"`  // 0 = GOMAXPROCS
}

// OutputConfig holds output naming settings.
type OutputConfig struct {
	Suffix string `yaml:"suffix"` // replaces the input extension
	Dir    string `yaml:"dir"`    // empty = next to the input
	Verify bool   `yaml:"verify"` // decode each written map and check unit length
}

// CodecConfig selects the image I/O backend.
type CodecConfig struct {
	Backend string `yaml:"backend"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the standard conversion settings.
func Default() *Config {
	return &Config{
		Conversion: ConversionConfig{
			Depth:    normalmap.DefaultDepth,
			Channel:  normalmap.ChannelRed.String(),
			Parallel: false,
			Workers:  0,
		},
		Output: OutputConfig{
			Suffix: "_b2n.bmp",
			Dir:    "",
			Verify: false,
		},
		Codec: CodecConfig{
			Backend: codec.BackendGo,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	var errs []error
	if math.IsNaN(c.Conversion.Depth) || math.IsInf(c.Conversion.Depth, 0) || c.Conversion.Depth <= 0 {
		errs = append(errs, fmt.Errorf("conversion.depth must be a positive number, got %v", c.Conversion.Depth))
	}
	if _, err := normalmap.ParseChannel(c.Conversion.Channel); err != nil {
		errs = append(errs, fmt.Errorf("conversion.channel: %w", err))
	}
	if c.Conversion.Workers < 0 {
		errs = append(errs, fmt.Errorf("conversion.workers must not be negative, got %d", c.Conversion.Workers))
	}
	if !strings.EqualFold(filepath.Ext(c.Output.Suffix), ".bmp") {
		errs = append(errs, fmt.Errorf("output.suffix must end in .bmp, got %q", c.Output.Suffix))
	}
	if strings.ContainsRune(c.Output.Suffix, filepath.Separator) {
		errs = append(errs, fmt.Errorf("output.suffix must not contain a path separator, got %q", c.Output.Suffix))
	}
	if !codec.Valid(c.Codec.Backend) {
		errs = append(errs, fmt.Errorf("codec.backend must be one of %v, got %q", codec.Backends(), c.Codec.Backend))
	}
	if !logger.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level))
	}
	return errors.Join(errs...)
}

// Channel returns the parsed height channel. Call after Validate.
func (c *Config) Channel() normalmap.Channel {
	ch, _ := normalmap.ParseChannel(c.Conversion.Channel)
	return ch
}

// Options returns the normal map generation options.
func (c *Config) Options() normalmap.Options {
	return normalmap.Options{
		Depth:    c.Conversion.Depth,
		Parallel: c.Conversion.Parallel,
		Workers:  c.Conversion.Workers,
	}
}
