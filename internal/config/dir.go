// Package config resolves the guidedocs configuration directory and loads
// the optional guidedocs.yaml settings file.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName names the per-user configuration directory.
const appName = "guidedocs"

// EnvConfigHome overrides the configuration directory.
const EnvConfigHome = "GUIDEDOCS_CONFIG_HOME"

// Dir returns the guidedocs configuration directory.
//
// Resolution:
//   - $GUIDEDOCS_CONFIG_HOME if set
//   - $XDG_CONFIG_HOME/guidedocs if set, on any platform
//   - %AppData%/guidedocs on Windows
//   - ~/.config/guidedocs otherwise
//
// Returns "" when no home directory can be determined.
func Dir() string {
	if dir := os.Getenv(EnvConfigHome); dir != "" {
		return dir
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}
