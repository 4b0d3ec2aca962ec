// Package config holds runtime settings for the processing driver.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// NotchConfig holds the periodic-noise suppression defaults.
type NotchConfig struct {
	NumPeaks      int
	Radius        int
	ExcludeRadius int
}

// DemoConfig sizes the synthetic input of the demo driver.
type DemoConfig struct {
	Width  int
	Height int
	// Period of the added sinusoidal stripes in pixels.
	Period int
	// Amplitude of the stripes in intensity levels.
	Amplitude float64
}

type Config struct {
	Debug     bool
	LogLevel  string
	LogFormat string // "text" or "json"
	Seed      uint64
	Notch     NotchConfig
	Demo      DemoConfig
}

func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "json",
		Seed:      1,
		Notch: NotchConfig{
			NumPeaks:      4,
			Radius:        5,
			ExcludeRadius: 15,
		},
		Demo: DemoConfig{
			Width:     256,
			Height:    256,
			Period:    8,
			Amplitude: 40,
		},
	}
}

// RegisterFlags binds every field to fs using the current values as
// defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug mode with verbose logging")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (trace, debug, info, warn, error)")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "Log format (text or json)")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "Seed for the noise generators")
	fs.IntVar(&c.Notch.NumPeaks, "notch-peaks", c.Notch.NumPeaks, "Number of spectral peak pairs to suppress")
	fs.IntVar(&c.Notch.Radius, "notch-radius", c.Notch.Radius, "Radius of each suppressed disk")
	fs.IntVar(&c.Notch.ExcludeRadius, "notch-exclude", c.Notch.ExcludeRadius, "Radius of the protected disk around DC")
	fs.IntVar(&c.Demo.Width, "width", c.Demo.Width, "Width of the synthetic input")
	fs.IntVar(&c.Demo.Height, "height", c.Demo.Height, "Height of the synthetic input")
	fs.IntVar(&c.Demo.Period, "period", c.Demo.Period, "Stripe period of the synthetic input")
	fs.Float64Var(&c.Demo.Amplitude, "amplitude", c.Demo.Amplitude, "Stripe amplitude of the synthetic input")
}

func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.Notch.NumPeaks < 0 || c.Notch.Radius < 0 || c.Notch.ExcludeRadius < 0 {
		return fmt.Errorf("%w: notch settings must be non-negative", ErrInvalidConfig)
	}
	if c.Notch.ExcludeRadius < c.Notch.Radius {
		return fmt.Errorf("%w: notch exclude radius %d below radius %d", ErrInvalidConfig, c.Notch.ExcludeRadius, c.Notch.Radius)
	}
	if c.Demo.Width <= 0 || c.Demo.Height <= 0 {
		return fmt.Errorf("%w: demo size %dx%d", ErrInvalidConfig, c.Demo.Width, c.Demo.Height)
	}
	if c.Demo.Period < 2 {
		return fmt.Errorf("%w: stripe period must be at least 2, got %d", ErrInvalidConfig, c.Demo.Period)
	}
	if c.Demo.Amplitude < 0 || c.Demo.Amplitude > 127 {
		return fmt.Errorf("%w: stripe amplitude %g outside [0,127]", ErrInvalidConfig, c.Demo.Amplitude)
	}
	return nil
}

// NewLogger builds a logger writing to out. Debug mode forces the debug
// level and a full-timestamp text formatter.
func (c *Config) NewLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	if c.Debug {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	if c.Debug || strings.EqualFold(c.LogFormat, "text") {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return logger
}
