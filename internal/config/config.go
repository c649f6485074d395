// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application settings.
type Config struct {
	Addr            string        `env:"CRATE_ADDR"             envDefault:":8080"`
	DataDir         string        `env:"CRATE_DATA_DIR"`
	StaticDir       string        `env:"CRATE_STATIC_DIR"`
	CameraID        int           `env:"CRATE_CAMERA_ID"        envDefault:"0"`
	CameraWidth     int           `env:"CRATE_CAMERA_WIDTH"     envDefault:"640"`
	CameraHeight    int           `env:"CRATE_CAMERA_HEIGHT"    envDefault:"480"`
	FPS             int           `env:"CRATE_FPS"              envDefault:"30"`
	Cooldown        time.Duration `env:"CRATE_COOLDOWN"         envDefault:"800ms"`
	LogLevel        string        `env:"CRATE_LOG_LEVEL"        envDefault:"info"`
	LogFile         string        `env:"CRATE_LOG_FILE"`
	Tray            bool          `env:"CRATE_TRAY"             envDefault:"false"`
	Gestures        bool          `env:"CRATE_GESTURES"         envDefault:"true"`
	HookTimeout     time.Duration `env:"CRATE_HOOK_TIMEOUT"     envDefault:"5s"`
	DetectorRetries uint64        `env:"CRATE_DETECTOR_RETRIES" envDefault:"2"`
}

// Load parses the environment into a Config and fills derived defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".crate")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.FPS <= 0 {
		return errors.New("CRATE_FPS must be positive")
	}
	if c.Cooldown <= 0 {
		return errors.New("CRATE_COOLDOWN must be positive")
	}
	if c.HookTimeout <= 0 {
		return errors.New("CRATE_HOOK_TIMEOUT must be positive")
	}
	if c.CameraWidth <= 0 || c.CameraHeight <= 0 {
		return errors.New("CRATE_CAMERA_WIDTH and CRATE_CAMERA_HEIGHT must be positive")
	}
	if c.CameraID < 0 {
		return errors.New("CRATE_CAMERA_ID must not be negative")
	}
	return nil
}

// DBPath returns the album catalog location inside DataDir.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "crate.db")
}

// HooksDir returns the directory scanned for navigation hooks.
func (c Config) HooksDir() string {
	return filepath.Join(c.DataDir, "hooks")
}
