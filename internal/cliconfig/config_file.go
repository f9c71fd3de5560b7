package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config but uses strings for durations so the file
// stays human friendly. Both TOML and YAML files map onto it.
type FileConfig struct {
	CheckpointDir string `toml:"checkpoint_dir" yaml:"checkpoint_dir"`
	Format        string `toml:"format" yaml:"format"`
	Keep          *int   `toml:"keep" yaml:"keep"`
	Sleepy        *bool  `toml:"sleepy" yaml:"sleepy"`
	SleepInterval string `toml:"sleep_interval" yaml:"sleep_interval"`
	LogLevel      string `toml:"log_level" yaml:"log_level"`
	Trace         *bool  `toml:"trace" yaml:"trace"`
}

// LoadFileConfig reads and parses a config file. Files ending in .yaml or
// .yml are parsed as YAML, everything else as TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &fc)
	default:
		err = toml.Unmarshal(b, &fc)
	}
	if err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.fibcalc/config.toml, or "" when the home
// directory cannot be determined.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".fibcalc", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("checkpoint-dir", fc.CheckpointDir, &cfg.CheckpointDir)
	s.setString("format", fc.Format, &cfg.Format)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setInt("keep", fc.Keep, &cfg.Keep)

	if err := s.setDuration("sleep-interval", fc.SleepInterval, &cfg.SleepInterval); err != nil {
		return err
	}

	s.setBool("sleepy", fc.Sleepy, &cfg.Sleepy)
	s.setBool("trace", fc.Trace, &cfg.Trace)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
