// Package config implements the optional tdb.yaml settings file,
// grounded on the teacher's YAML-backed config provider: a small struct
// with defaults, loaded if present, with env-var overrides applied on
// top so a deployment can tune behavior without editing the file.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the tdb.yaml settings. The run and trace commands read
// MaxConsecutiveErrors and the view command reads ListenAddr and WebDir;
// StepYield and LogLevel are loaded but no command reads them. Every
// field has a sane zero-config default.
type Config struct {
	// StepYield is loaded from step_yield but not passed to the tracer,
	// which sleeps for its own fixed 100µs between resume and the next
	// suspend.
	StepYield time.Duration `yaml:"step_yield"`
	// MaxConsecutiveErrors bounds how many failed steps in a row the
	// engine tolerates before Run gives up.
	MaxConsecutiveErrors int `yaml:"max_consecutive_errors"`
	// ListenAddr is the HTTP viewer's bind address.
	ListenAddr string `yaml:"listen_addr"`
	// WebDir is the static asset directory served at "/"; empty disables
	// static serving.
	WebDir string `yaml:"web_dir"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the zero-config settings.
func Default() Config {
	return Config{
		StepYield:            100 * time.Microsecond,
		MaxConsecutiveErrors: 10,
		ListenAddr:           ":8787",
		WebDir:               "",
		LogLevel:             "info",
	}
}

// Load reads path if it exists, overlaying it on Default(); a missing
// file is not an error — tdb runs zero-config. Env vars are then applied
// on top of whatever the file set.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, errors.Wrapf(err, "parse %s", path)
			}
		case os.IsNotExist(err):
			// zero-config: fall through with defaults
		default:
			return Config{}, errors.Wrapf(err, "read %s", path)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyEnvOverrides lets TDB_LISTEN_ADDR, TDB_WEB_DIR, TDB_LOG_LEVEL, and
// TDB_MAX_CONSECUTIVE_ERRORS win over both the default and the file, the
// same precedence order the teacher's provider uses for its own settings.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TDB_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("TDB_WEB_DIR"); v != "" {
		cfg.WebDir = v
	}
	if v := os.Getenv("TDB_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TDB_MAX_CONSECUTIVE_ERRORS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxConsecutiveErrors = n
		}
	}
}
