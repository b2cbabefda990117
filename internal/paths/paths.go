package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	appName = "purple-ghost"

	// File name of the configuration file.
	ConfigFileName = "config.yaml"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the configuration file.
//
// A config.yaml in the current working directory wins. Otherwise:
//
//	Linux:   $XDG_CONFIG_HOME/purple-ghost/config.yaml
//	macOS:   ~/Library/Application Support/purple-ghost/config.yaml
func Config() string {
	if info, err := os.Stat(ConfigFileName); err == nil && !info.IsDir() {
		return ConfigFileName
	}
	return filepath.Join(xdg.ConfigHome, appName, ConfigFileName)
}

// Path to the directory for persistent daemon state.
//
//	Linux:   $XDG_STATE_HOME/purple-ghost
//	macOS:   ~/Library/Application Support/purple-ghost
func State() string {
	return filepath.Join(xdg.StateHome, appName)
}

// Path to the badger directory holding per-channel statistics.
func Stats() string {
	return filepath.Join(State(), "stats")
}

// Path to the directory for runtime files (sockets, PIDs).
//
//	Linux:   $XDG_RUNTIME_DIR/purple-ghost or /run/user/<uid>/purple-ghost
//	macOS:   ~/Library/Caches/purple-ghost/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, appName)
	}
	return filepath.Join(xdg.CacheHome, appName, "run")
}

// Default path to the Unix domain socket used by the control commands.
func Socket() string {
	return filepath.Join(Runtime(), appName+".sock")
}

// Default path to the PID file.
func PIDFile() string {
	return filepath.Join(Runtime(), appName+".pid")
}
