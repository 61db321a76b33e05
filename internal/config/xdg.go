// Package config loads skillpath settings from defaults, a TOML file and
// SKILLPATH_* environment variables, in increasing precedence. Command
// line flags are applied on top by the caller.
package config

import (
	"os"
	"path/filepath"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	if p := os.Getenv("SKILLPATH_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(XDGConfigHome(), "skillpath", "config.toml")
}
