// Package config resolves tasklist settings from layered sources.
//
// Later layers win:
//
//	defaults < user file < project file < TASKLIST_* env < flags
//
// The user file is ~/.tasklist/tasklist.toml, or tasklist/tasklist.toml under
// the OS config directory (%APPDATA% on Windows, ~/Library/Application Support
// on macOS, $XDG_CONFIG_HOME or ~/.config elsewhere). The project file is
// tasklist.toml or .tasklist.toml in the working directory.
//
// Unknown keys in either file are an error. ConfigWithSources.Sources records
// which layer supplied each key; the doctor command prints it.
package config
