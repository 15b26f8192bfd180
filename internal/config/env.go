package config

import (
	"os"
	"strings"
)

// loadFromEnv overrides config from environment variables and records
// each override in sources.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	setEnv := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv("TASKLIST_BACKEND"); v != "" {
		cfg.Backend = v
		setEnv("backend")
	}
	if v := os.Getenv("TASKLIST_DATA_DIR"); v != "" {
		cfg.DataDir = v
		setEnv("data_dir")
	}
	if v := os.Getenv("TASKLIST_NAMESPACE"); v != "" {
		cfg.Namespace = v
		setEnv("namespace")
	}
	if v := os.Getenv("TASKLIST_KEY"); v != "" {
		cfg.StorageKey = v
		setEnv("storage_key")
	}

	// Logging configuration
	if v := os.Getenv("TASKLIST_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		setEnv("log_level")
	}
	if v := os.Getenv("TASKLIST_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		setEnv("log_format")
	}
	if v := os.Getenv("TASKLIST_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		setEnv("log_timestamps")
	}
	if v := os.Getenv("TASKLIST_LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
		setEnv("log_caller")
	}
	if v := os.Getenv("TASKLIST_LOG_FILE"); v != "" {
		cfg.LogFile = v
		setEnv("log_file")
	}
}

// boolFromString parses common truthy spellings.
func boolFromString(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
