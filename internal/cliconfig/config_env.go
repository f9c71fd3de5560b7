package cliconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// EnvPrefix starts every environment variable fibcalc reads.
const EnvPrefix = "FIBCALC_"

// ApplyEnvConfig applies configuration from environment variables (FIBCALC_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("checkpoint-dir", os.Getenv(EnvPrefix+"CHECKPOINT_DIR"), &cfg.CheckpointDir)
	s.setString("format", os.Getenv(EnvPrefix+"FORMAT"), &cfg.Format)
	s.setString("log-level", os.Getenv(EnvPrefix+"LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("keep", os.Getenv(EnvPrefix+"KEEP"), &cfg.Keep); err != nil {
		return err
	}
	if err := s.setDuration("sleep-interval", os.Getenv(EnvPrefix+"SLEEP_INTERVAL"), &cfg.SleepInterval); err != nil {
		return err
	}

	s.setBoolFromString("sleepy", os.Getenv(EnvPrefix+"SLEEPY"), &cfg.Sleepy)
	s.setBoolFromString("trace", os.Getenv(EnvPrefix+"TRACE"), &cfg.Trace)

	return nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Variables already set are left alone and missing files are
// ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}
