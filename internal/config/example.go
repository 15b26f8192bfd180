package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasklist configuration file
# Values can be overridden by TASKLIST_* environment variables or CLI flags

# Storage backend: file, sqlite or memory
backend = "file"

# Data directory (supports ~ expansion and %VAR% on Windows)
data_dir = "~/.tasklist"

# Namespace separating independent task lists in the same data directory
namespace = "tasklist"

# Key of the slot holding the task snapshot
storage_key = "tasks"

# Logging
log_level = "info"     # debug, info, warn, error
log_format = "text"    # text, json, logfmt
log_timestamps = false
log_caller = false

# Log file used while the terminal UI is running (relative to data_dir)
# log_file = "tasklist.log"
`
}
