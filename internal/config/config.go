// Package config provides configuration management for the sysutil CLI
// using Viper, loading from .sysutil.yml files, SYSUTIL_-prefixed
// environment variables, and command-line flags.
package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Python Python `yaml:"python" mapstructure:"python"`
	Fetch  Fetch  `yaml:"fetch" mapstructure:"fetch"`
	Build  Build  `yaml:"build" mapstructure:"build"`
	Watch  Watch  `yaml:"watch" mapstructure:"watch"`
	Log    Log    `yaml:"log" mapstructure:"log"`
}

// Python configures interpreter and environment defaults.
type Python struct {
	// Interpreter is the base Python executable. Empty selects the
	// platform default (python on Windows, python3 elsewhere).
	Interpreter string `yaml:"interpreter" mapstructure:"interpreter"`
	// VenvDir is where named environments are created.
	VenvDir string `yaml:"venv_dir" mapstructure:"venv_dir"`
}

// Fetch configures the web client.
type Fetch struct {
	TimeoutSeconds int `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// Timeout returns the fetch timeout as a duration.
func (f Fetch) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// Build configures packaging defaults.
type Build struct {
	OneFile bool   `yaml:"onefile" mapstructure:"onefile"`
	Console bool   `yaml:"console" mapstructure:"console"`
	DistDir string `yaml:"dist_dir" mapstructure:"dist_dir"`
}

// Watch configures the directory organizer.
type Watch struct {
	DebounceMillis int `yaml:"debounce_millis" mapstructure:"debounce_millis"`
}

// Debounce returns the watcher quiet period as a duration.
func (w Watch) Debounce() time.Duration {
	return time.Duration(w.DebounceMillis) * time.Millisecond
}

// Log configures CLI logging.
type Log struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // "text" or "json"
}

// Load unmarshals the viper state into a Config and applies defaults for
// anything the file and environment left unset.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Python.VenvDir == "" {
		config.Python.VenvDir = ".venvs"
	}
	if config.Fetch.TimeoutSeconds <= 0 {
		config.Fetch.TimeoutSeconds = 30
	}
	if config.Build.DistDir == "" {
		config.Build.DistDir = "dist"
	}
	if config.Watch.DebounceMillis <= 0 {
		config.Watch.DebounceMillis = 500
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	// Workaround for viper bool handling when set via environment.
	if viper.IsSet("build.onefile") {
		config.Build.OneFile = viper.GetBool("build.onefile")
	}
	if viper.IsSet("build.console") {
		config.Build.Console = viper.GetBool("build.console")
	}

	return &config, nil
}
