package config

import (
	"bytes"
	"encoding/json"
	"flag"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, NotchConfig{NumPeaks: 4, Radius: 5, ExcludeRadius: 15}, c.Notch)
}

func TestRegisterFlags(t *testing.T) {
	c := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	err := fs.Parse([]string{"-debug", "-seed", "42", "-notch-peaks", "2", "-log-format", "text", "-period", "16"})
	require.NoError(t, err)
	assert.True(t, c.Debug)
	assert.Equal(t, uint64(42), c.Seed)
	assert.Equal(t, 2, c.Notch.NumPeaks)
	assert.Equal(t, 5, c.Notch.Radius, "untouched flags keep defaults")
	assert.Equal(t, 16, c.Demo.Period)
	assert.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"level", func(c *Config) { c.LogLevel = "loud" }},
		{"format", func(c *Config) { c.LogFormat = "xml" }},
		{"negative peaks", func(c *Config) { c.Notch.NumPeaks = -1 }},
		{"exclude below radius", func(c *Config) { c.Notch.ExcludeRadius = 2 }},
		{"empty demo", func(c *Config) { c.Demo.Width = 0 }},
		{"period", func(c *Config) { c.Demo.Period = 1 }},
		{"amplitude", func(c *Config) { c.Demo.Amplitude = 200 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	c := Default()
	logger := c.NewLogger(&buf)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	logger.WithField("step", 1).Info("hello")
	logger.Debug("hidden")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, float64(1), entry["step"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewLoggerDebug(t *testing.T) {
	var buf bytes.Buffer
	c := Default()
	c.Debug = true
	logger := c.NewLogger(&buf)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}
