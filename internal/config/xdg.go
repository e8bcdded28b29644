package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppDir is the directory name used under each XDG base directory.
const AppDir = "typeflow"

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppDir, "config.toml")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, AppDir, "typeflow.db")
}

// DefaultLogPath returns the default path for the rotating log file.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, AppDir, "typeflow.log")
}
