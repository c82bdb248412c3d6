// Package xdg provides helpers to resolve XDG Base Directory paths for oratab.
// Configuration (the TOML file) lives under the config dir; the log file
// lives under the state dir so it never fights the TUI for the terminal.
package xdg

import (
	"os"
	"path/filepath"
)

// ConfigDir returns the XDG config directory for oratab.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/oratab when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	dir := filepath.Join(base, "oratab")
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}

// StateDir returns the XDG state directory for oratab.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.local/state/oratab when XDG_STATE_HOME is unset.
func StateDir() (string, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "state")
	}
	dir := filepath.Join(base, "oratab")
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
