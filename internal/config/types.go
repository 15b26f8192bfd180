package config

import (
	"fmt"

	"github.com/nibzard/tasklist/internal/logging"
	"github.com/nibzard/tasklist/internal/storage"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource

	userFile    string
	projectFile string
}

// Default values.
const (
	DefaultBackend    = storage.BackendFile
	DefaultDataDir    = "~/.tasklist"
	DefaultNamespace  = storage.DefaultNamespace
	DefaultStorageKey = "tasks"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultLogFile    = "tasklist.log"
)

// Config holds the full configuration for tasklist.
type Config struct {
	// Storage
	Backend    string `toml:"backend"`
	DataDir    string `toml:"data_dir"`
	Namespace  string `toml:"namespace"`
	StorageKey string `toml:"storage_key"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// LogFile receives log output while the terminal UI owns the screen.
	// Relative paths are resolved against DataDir.
	LogFile string `toml:"log_file"`
}

// StorageOptions returns the options used to open the key-value backend.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:   c.Backend,
		Dir:       c.DataDir,
		Namespace: c.Namespace,
	}
}

// LogPath returns the absolute log file path used by the terminal UI.
func (c *Config) LogPath() string {
	p := c.LogFile
	if p == "" {
		p = DefaultLogFile
	}
	return resolveUnder(c.DataDir, p)
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	if !storage.ValidBackend(c.Backend) {
		return fmt.Errorf("invalid backend %q (expected file|sqlite|memory)", c.Backend)
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q (expected debug|info|warn|error|fatal)", c.LogLevel)
	}
	if !logging.ValidFormat(c.LogFormat) {
		return fmt.Errorf("invalid log_format %q (expected text|json|logfmt)", c.LogFormat)
	}
	return nil
}
