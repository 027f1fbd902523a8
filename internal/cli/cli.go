// Package cli implements the svg2pdf command-line interface.
//
// The root command converts the SVG files given as arguments. Subcommands
// provide the interactive front-ends and maintenance tools:
//   - desktop: terminal front-end with a drop field, DPI spinner and log
//   - watch: convert SVG files as they appear in a drop folder
//   - backends: list renderers and whether they can run here
//   - cache: inspect or clear the render cache
//   - config: show the configuration file and effective values
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so that library code logs with the same
// settings.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/svg2pdf/pkg/buildinfo"
	"github.com/matzehuels/svg2pdf/pkg/cache"
	"github.com/matzehuels/svg2pdf/pkg/config"
	"github.com/matzehuels/svg2pdf/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "svg2pdf"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Stdout io.Writer
	Stderr io.Writer

	configPath string
	config     *config.Config
	verbose    bool
}

// New creates a new CLI instance writing results to stdout and logs and
// status lines to stderr.
func New(stdout, stderr io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(stderr, level),
		Stdout: stdout,
		Stderr: stderr,
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The root command itself is the batch converter.
func (c *CLI) RootCommand() *cobra.Command {
	root := c.convertCommand()
	root.Version = buildinfo.Version
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Stdout)
	root.SetErr(c.Stderr)

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/svg2pdf/config.toml)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return c.setup(cmd)
	}

	root.AddCommand(c.desktopCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.backendsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration, applies the log level and attaches the
// logger to the command context.
func (c *CLI) setup(cmd *cobra.Command) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		observability.SetConvertHooks(logHooks{c.Logger})
		observability.SetCacheHooks(logHooks{c.Logger})
	}

	path, err := c.resolveConfigPath()
	if err != nil {
		return err
	}
	if c.configPath != "" {
		if _, err := os.Stat(path); err != nil {
			return err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.config = cfg
	c.Logger.Debug("loaded config", "path", path)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// resolveConfigPath returns --config or the default config location.
func (c *CLI) resolveConfigPath() (string, error) {
	if c.configPath != "" {
		return config.ExpandPath(c.configPath), nil
	}
	return config.DefaultPath()
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache returns the render cache selected by configuration: Redis when
// cache.redis_url is set, the local file cache otherwise, and a NullCache
// when caching is disabled. An unreachable Redis falls back to the file
// cache with a warning.
func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache || !c.config.Cache.Enabled {
		return cache.NewNullCache()
	}

	if url := c.config.Cache.RedisURL; url != "" {
		rc, err := cache.NewRedisCache(ctx, url)
		if err == nil {
			c.Logger.Debug("using redis cache", "url", url)
			return rc
		}
		c.Logger.Warn("redis cache unavailable, using file cache", "err", err)
	}

	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Debug("file cache unavailable", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/svg2pdf/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
