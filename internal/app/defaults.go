package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// GetDefaults returns the default paths, preferring environment variables:
//   - HEALTHTRACK_CONFIG_PATH: config file (default ~/.config/healthtrack.toml)
//   - HEALTHTRACK_HOME: data directory (default ~/.local/share/healthtrack)
func GetDefaults() (map[string]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	configPath := os.Getenv("HEALTHTRACK_CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join(homeDir, ".config", "healthtrack.toml")
	}
	baseDir := os.Getenv("HEALTHTRACK_HOME")
	if baseDir == "" {
		baseDir = filepath.Join(homeDir, ".local", "share", "healthtrack")
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"env_file":    filepath.Join(baseDir, ".env"),
	}, nil
}

// LoadEnv reads KEY=value pairs from the given files into the process
// environment. Variables that are already set win, and missing files are
// skipped.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}
