package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "comfort"

// AppDataDir returns the application directory for configuration and logs.
// Uses os.UserConfigDir() which returns:
//   - macOS: ~/Library/Application Support
//   - Linux: $XDG_CONFIG_HOME or ~/.config
//   - Windows: %AppData% (roaming)
func AppDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}

	path := filepath.Join(dir, appDirName)
	_ = os.MkdirAll(path, 0700)

	return path
}

// AppLocalDataDir returns the OS-appropriate local data directory, where
// the invocation history lives.
//   - macOS: ~/Library/Application Support/comfort
//   - Linux: $XDG_DATA_HOME/comfort or ~/.local/share/comfort
//   - Windows: %LOCALAPPDATA%\comfort
func AppLocalDataDir() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "."
		}
		base = filepath.Join(home, "Library", "Application Support")

	case "windows":
		base = os.Getenv("LOCALAPPDATA")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "."
			}
			base = filepath.Join(home, "AppData", "Local")
		}

	default:
		base = os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "."
			}
			base = filepath.Join(home, ".local", "share")
		}
	}

	return filepath.Join(base, appDirName)
}

// ConfigFilePath returns the path of the key=value configuration file.
func ConfigFilePath() string {
	return filepath.Join(AppDataDir(), "config")
}

// LogFilePath returns the path to the application log file.
func LogFilePath() string {
	return filepath.Join(AppDataDir(), "comfort.log")
}

// HistoryFilePath returns the path of the invocation history database.
func HistoryFilePath() string {
	return filepath.Join(AppLocalDataDir(), "history.db")
}
