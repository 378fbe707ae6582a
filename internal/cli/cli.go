// Package cli implements the bookplot command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bookplot/pkg/buildinfo"
	"github.com/matzehuels/bookplot/pkg/cache"
	"github.com/matzehuels/bookplot/pkg/config"
	"github.com/matzehuels/bookplot/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "bookplot"

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

	// Config is loaded before any subcommand runs.
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "bookplot analyzes opening books from engine self-play",
		Long: `bookplot reads PGN files of engine self-play games, counts white wins,
draws and black wins per opening, fits a Dirichlet prior to those counts and
plots the openings on a ternary diagram.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.fitCommand())
	root.AddCommand(c.plotCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup applies --verbose and loads the config file and environment.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.Config = cfg
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	c.Logger.Debug("loaded config", "path", c.configPath, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	backend := c.Config.Cache
	if noCache {
		backend.Backend = config.CacheNone
	}
	ch, keyer, err := newCache(ctx, backend)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache.Instrumented(ch), keyer, c.Logger), nil
}

// newCache opens the configured backend. Redis keys are scoped by the
// configured prefix so several deployments can share one server.
func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, cache.Keyer, error) {
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil, nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis cache: %w", err)
		}
		return rc, cache.NewScopedKeyer(nil, cfg.KeyPrefix), nil
	default:
		fc, err := cache.NewFileCache(cfg.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open file cache: %w", err)
		}
		return fc, nil, nil
	}
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions returns the configured plot and fit settings with defaults
// filled in, ready to be overridden by command flags.
func (c *CLI) pipelineOptions() pipeline.Options {
	opts := c.Config.PipelineOptions()
	opts.SetFitDefaults()
	opts.SetRenderDefaults()
	opts.Logger = c.Logger
	return opts
}
