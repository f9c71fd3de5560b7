package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/fibcalc/internal/adapters/fs"
	"github.com/bft-labs/fibcalc/internal/app"
	"github.com/bft-labs/fibcalc/internal/domain"
)

// Config holds CLI configuration for fibcalc.
type Config struct {
	// CheckpointDir enables snapshot persistence when non-empty.
	CheckpointDir string
	// Format is the encoding for new snapshots: json, yaml or toml.
	Format string
	// Keep is the number of newest snapshots retained; 0 keeps all.
	Keep int

	Sleepy        bool
	SleepInterval time.Duration

	LogLevel string
	Trace    bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Format:        fs.DefaultFormat,
		SleepInterval: app.DefaultPaceInterval,
		LogLevel:      zerolog.LevelWarnValue,
	}
}

// Validate checks the configuration for errors and normalises values.
func (c *Config) Validate() error {
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Format == "" {
		c.Format = fs.DefaultFormat
	}
	if _, ok := fs.CodecFor(c.Format); !ok {
		return fmt.Errorf("%w: unknown format %q (want one of %s)",
			domain.ErrInvalidConfig, c.Format, strings.Join(fs.Formats(), ", "))
	}

	if c.Keep < 0 {
		return fmt.Errorf("%w: keep must not be negative", domain.ErrInvalidConfig)
	}
	if c.SleepInterval <= 0 {
		return fmt.Errorf("%w: sleep interval must be positive", domain.ErrInvalidConfig)
	}

	if c.LogLevel == "" {
		c.LogLevel = zerolog.LevelWarnValue
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level: %v", domain.ErrInvalidConfig, err)
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value from a pointer if not nil and flag not changed.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Zero is a real value; range checks are left to Validate.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
