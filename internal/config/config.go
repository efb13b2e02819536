// Package config resolves mapcheck settings from defaults, an optional TOML
// file and MAPCHECK_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/alexanderramin/mapcheck/internal/domain"
)

// Config holds every setting the binary needs at startup.
type Config struct {
	DBPath      string             `toml:"db_path"`
	CatalogPath string             `toml:"catalog"`
	ProjectType domain.ProjectType `toml:"project_type"`
	ExportDir   string             `toml:"export_dir"`
	LogLevel    string             `toml:"log_level"`
	LogFormat   string             `toml:"log_format"`
	LogCalls    bool               `toml:"log_calls"`

	// File is the config file that was read, or "" when none existed.
	File string `toml:"-"`
}

// Dir returns ~/.mapcheck.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".mapcheck"), nil
}

// Default returns the settings used when nothing is configured. An empty
// CatalogPath selects the built-in catalog.
func Default(dir string) Config {
	return Config{
		DBPath:      filepath.Join(dir, "mapcheck.db"),
		ProjectType: domain.ProjectBoth,
		ExportDir:   ".",
		LogLevel:    "warn",
		LogFormat:   "text",
	}
}

// Load builds the effective config. path names the TOML file; when empty,
// MAPCHECK_CONFIG and then ~/.mapcheck/config.toml are tried. A missing
// file is not an error.
func Load(path string) (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	cfg := Default(dir)

	explicit := path != ""
	if !explicit {
		if v := os.Getenv("MAPCHECK_CONFIG"); v != "" {
			path, explicit = v, true
		} else {
			path = filepath.Join(dir, "config.toml")
		}
	}

	if err := loadFile(&cfg, path); err != nil {
		if !errors.Is(err, os.ErrNotExist) || explicit {
			return Config{}, err
		}
	} else {
		cfg.File = path
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config file %s: unknown key %q", path, undecoded[0].String())
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("MAPCHECK_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("MAPCHECK_CATALOG"); v != "" {
		cfg.CatalogPath = v
	}
	if v := os.Getenv("MAPCHECK_PROJECT_TYPE"); v != "" {
		cfg.ProjectType = domain.ProjectType(v)
	}
	if v := os.Getenv("MAPCHECK_EXPORT_DIR"); v != "" {
		cfg.ExportDir = v
	}
	if v := os.Getenv("MAPCHECK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MAPCHECK_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("MAPCHECK_LOG_CALLS"); v != "" {
		calls, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MAPCHECK_LOG_CALLS: %w", err)
		}
		cfg.LogCalls = calls
	}
	return nil
}

// Validate normalizes the project type and rejects unknown values.
func (c *Config) Validate() error {
	if c.ProjectType == "" {
		c.ProjectType = domain.ProjectBoth
	}
	pt, err := domain.ParseProjectType(string(c.ProjectType))
	if err != nil {
		return fmt.Errorf("config project_type: %w", err)
	}
	c.ProjectType = pt
	if c.DBPath == "" {
		return errors.New("config db_path must not be empty")
	}
	return nil
}
