// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/loopgate/loopgate/internal/domain"
)

// Loader loads configuration from TOML files.
// Local (data-dir) config takes precedence over the global config, which
// takes precedence over built-in defaults.
type Loader struct {
	dataDir       string // Path to the .loopgate data directory
	globalConfDir string // Path to the global config directory (e.g. ~/.config/loopgate)
}

// NewLoader creates a new Loader.
func NewLoader(dataDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config
// directory. This is useful for testing.
func NewLoaderWithGlobalDir(dataDir, globalConfDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: globalConfDir,
	}
}

func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// Load returns the merged configuration (defaults <- global <- local).
func (l *Loader) Load() (*domain.Config, error) {
	base := domain.NewDefaultConfig()

	if l.globalConfDir != "" {
		globalPath := filepath.Join(l.globalConfDir, domain.ConfigFileName)
		if err := l.loadInto(globalPath, base); err != nil {
			return nil, err
		}
	}

	localPath := filepath.Join(l.dataDir, domain.ConfigFileName)
	if err := l.loadInto(localPath, base); err != nil {
		return nil, err
	}

	return base, nil
}

// loadInto decodes the file over cfg, leaving cfg untouched when the file
// does not exist.
func (l *Loader) loadInto(path string, cfg *domain.Config) error {
	content, err := os.ReadFile(path) //nolint:gosec // Paths come from well-known config locations
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(content, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}
