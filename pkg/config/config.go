// Package config loads the optional svg2pdf configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/svg2pdf/config.toml
// (~/.config/svg2pdf/config.toml by default). Every key is optional; a
// missing file yields [Default]. Command-line flags always win over values
// read from the file.
//
//	[convert]
//	dpi = 150
//	backend = "rsvg"
//	output_dir = "~/Documents/pdf"
//
//	[cache]
//	enabled = true
//	ttl = "720h"
//	redis_url = ""
//
//	[desktop]
//	drop_dir = "~/Desktop/svg-inbox"
//	debounce = "500ms"
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/svg2pdf/pkg/errors"
)

const appName = "svg2pdf"

// DefaultDPI is the resolution SVG user units are defined against.
const DefaultDPI = 96.0

// DefaultBackend is the renderer used when neither flag nor file names one.
const DefaultBackend = "canvas"

// Config holds all application configuration.
type Config struct {
	Convert ConvertConfig `toml:"convert"`
	Cache   CacheConfig   `toml:"cache"`
	Desktop DesktopConfig `toml:"desktop"`
}

// ConvertConfig holds defaults for the conversion flags.
type ConvertConfig struct {
	DPI       float64 `toml:"dpi"`
	Backend   string  `toml:"backend"`
	OutputDir string  `toml:"output_dir"`
}

// CacheConfig controls the render cache.
type CacheConfig struct {
	Enabled  bool   `toml:"enabled"`
	TTL      string `toml:"ttl"`
	RedisURL string `toml:"redis_url"`
}

// DesktopConfig holds settings for the desktop and watch front-ends.
type DesktopConfig struct {
	DropDir  string `toml:"drop_dir"`
	Debounce string `toml:"debounce"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			DPI:     DefaultDPI,
			Backend: DefaultBackend,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     "720h",
		},
		Desktop: DesktopConfig{
			Debounce: "500ms",
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults when
// the file does not exist. Keys absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}

	cfg.Convert.OutputDir = ExpandPath(cfg.Convert.OutputDir)
	cfg.Desktop.DropDir = ExpandPath(cfg.Desktop.DropDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be enforced by the TOML decoder.
func (c *Config) Validate() error {
	if err := errors.ValidateDPI(c.Convert.DPI); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "convert.dpi")
	}
	if _, err := c.CacheTTL(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "cache.ttl")
	}
	if _, err := c.DebounceInterval(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "desktop.debounce")
	}
	return nil
}

// CacheTTL returns the parsed cache entry lifetime. An empty value means
// entries never expire.
func (c *Config) CacheTTL() (time.Duration, error) {
	return parseDuration(c.Cache.TTL)
}

// DebounceInterval returns how long the drop-folder watcher waits for a
// burst of file events to settle.
func (c *Config) DebounceInterval() (time.Duration, error) {
	return parseDuration(c.Desktop.Debounce)
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "duration must not be negative: %s", s)
	}
	return d, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}

// DefaultPath returns the default config file location, honouring
// XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
