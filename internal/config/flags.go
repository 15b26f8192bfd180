package config

import (
	"flag"
)

// parseFlags defines the global flags on fs, parses args and applies only the
// flags that were explicitly set, recording them in sources.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("tasklist", flag.ContinueOnError)
	}

	// Bind to copies so a flag's default never clobbers a file or env value.
	v := *cfg

	// Storage
	fs.StringVar(&v.Backend, "backend", cfg.Backend, "Storage backend (file|sqlite|memory)")
	fs.StringVar(&v.DataDir, "data-dir", cfg.DataDir, "Data directory")
	fs.StringVar(&v.Namespace, "namespace", cfg.Namespace, "Storage namespace")
	fs.StringVar(&v.StorageKey, "key", cfg.StorageKey, "Storage key holding the task snapshot")

	// Logging
	fs.StringVar(&v.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&v.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&v.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&v.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")
	fs.StringVar(&v.LogFile, "log-file", cfg.LogFile, "Log file used by the terminal UI")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Map flag names to source field names
	flagToSource := map[string]string{
		"backend":        "backend",
		"data-dir":       "data_dir",
		"namespace":      "namespace",
		"key":            "storage_key",
		"log-level":      "log_level",
		"log-format":     "log_format",
		"log-timestamps": "log_timestamps",
		"log-caller":     "log_caller",
		"log-file":       "log_file",
	}

	fs.Visit(func(f *flag.Flag) {
		field, ok := flagToSource[f.Name]
		if !ok {
			return
		}
		applyFlag(cfg, &v, field)
		if sources != nil {
			sources[field] = SourceFlag
		}
	})

	return nil
}

func applyFlag(cfg, v *Config, field string) {
	switch field {
	case "backend":
		cfg.Backend = v.Backend
	case "data_dir":
		cfg.DataDir = v.DataDir
	case "namespace":
		cfg.Namespace = v.Namespace
	case "storage_key":
		cfg.StorageKey = v.StorageKey
	case "log_level":
		cfg.LogLevel = v.LogLevel
	case "log_format":
		cfg.LogFormat = v.LogFormat
	case "log_timestamps":
		cfg.LogTimestamps = v.LogTimestamps
	case "log_caller":
		cfg.LogCaller = v.LogCaller
	case "log_file":
		cfg.LogFile = v.LogFile
	}
}
