// Package xdg resolves the XDG Base Directory locations used by garagedoor.
// Config lives under $XDG_CONFIG_HOME/garagedoor and the command history under
// $XDG_STATE_HOME/garagedoor, falling back to ~/.config and ~/.local/state.
package xdg

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used under each XDG base.
const AppName = "garagedoor"

// ConfigDir returns the config directory, creating it with 0700 permissions.
func ConfigDir() (string, error) {
	return appDir("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the state directory, creating it with 0700 permissions.
func StateDir() (string, error) {
	return appDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func appDir(env, fallback string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, fallback)
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
