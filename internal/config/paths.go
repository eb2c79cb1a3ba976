package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// DefaultPath returns the config file used when none is given on the
// command line: $XDG_CONFIG_HOME/waved/config.toml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// PathIn returns the config file inside an explicit config directory.
func PathIn(dir string) string {
	return filepath.Join(ExpandPath(dir), "config.toml")
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
