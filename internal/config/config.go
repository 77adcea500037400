// Package config loads wenv settings from defaults, a TOML file and
// WENV_* environment variables, in that order of precedence.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"wenv/internal/errors"
)

const envPrefix = "WENV_"

// Store backends.
const (
	BackendFile     = "file"
	BackendRegistry = "registry"
	BackendMemory   = "memory"
)

type Config struct {
	Store   StoreConfig   `koanf:"store"`
	Path    PathConfig    `koanf:"path"`
	Repair  RepairConfig  `koanf:"repair"`
	Display DisplayConfig `koanf:"display"`
}

type StoreConfig struct {
	Backend string `koanf:"backend"`
	Path    string `koanf:"path"` // File backend only
}

type PathConfig struct {
	Variable  string `koanf:"variable"`
	Delimiter string `koanf:"delimiter"`
	Workers   int    `koanf:"workers"` // 0 checks entries one by one
	Expand    bool   `koanf:"expand"`  // Expand %VAR% and $VAR before checking
}

type RepairConfig struct {
	DryRun     bool   `koanf:"dry_run"`
	Backup     bool   `koanf:"backup"`
	BackupPath string `koanf:"backup_path"`
}

type DisplayConfig struct {
	MaxWidth int `koanf:"max_width"` // 0 means use the terminal width
}

// DefaultPath is where Load looks when no explicit file is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "wenv", "config.toml")
}

func defaults() map[string]interface{} {
	backend := BackendFile
	if runtime.GOOS == "windows" {
		backend = BackendRegistry
	}
	return map[string]interface{}{
		"store.backend":      backend,
		"store.path":         filepath.Join(xdg.ConfigHome, "wenv", "environment.toml"),
		"path.variable":      "PATH",
		"path.delimiter":     string(os.PathListSeparator),
		"path.workers":       0,
		"path.expand":        true,
		"repair.dry_run":     true,
		"repair.backup":      true,
		"repair.backup_path": filepath.Join(xdg.DataHome, "wenv", "backups.toml"),
		"display.max_width":  0,
	}
}

// Load builds the configuration. An explicit path must exist; the default
// path is optional.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path)
		}
	} else if explicit {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not readable", path)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps WENV_REPAIR_DRY_RUN to repair.dry_run: only the first
// underscore separates section from key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.Replace(s, "_", ".", 1)
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.Path == "" {
			return errors.New(errors.ErrConfigValid, "store.path is required for the file backend")
		}
	case BackendRegistry, BackendMemory:
	default:
		return errors.Newf(errors.ErrConfigValid, "unknown store.backend %q", c.Store.Backend).
			WithDetail("backend", c.Store.Backend)
	}
	if c.Path.Delimiter == "" {
		return errors.New(errors.ErrConfigValid, "path.delimiter must not be empty")
	}
	if c.Path.Variable == "" {
		return errors.New(errors.ErrConfigValid, "path.variable must not be empty")
	}
	if c.Path.Workers < 0 {
		return errors.Newf(errors.ErrConfigValid, "path.workers must be >= 0, got %d", c.Path.Workers)
	}
	if c.Repair.Backup && c.Repair.BackupPath == "" {
		return errors.New(errors.ErrConfigValid, "repair.backup_path is required when backups are enabled")
	}
	return nil
}
