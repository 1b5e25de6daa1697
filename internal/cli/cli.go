// Package cli implements the alchemytree command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/alchemytree/internal/config"
	"github.com/matzehuels/alchemytree/pkg/buildinfo"
	"github.com/matzehuels/alchemytree/pkg/cache"
	rio "github.com/matzehuels/alchemytree/pkg/io"
	"github.com/matzehuels/alchemytree/pkg/pipeline"
	"github.com/matzehuels/alchemytree/pkg/recipe"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "alchemytree"

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

	// Config is loaded before any subcommand runs. Flags override it.
	Config *config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and the built-in
// configuration.
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
		Short: "Alchemytree lays out and replays crafting recipe trees",
		Long: `Alchemytree turns a resolved crafting recipe tree into a positioned
node/edge diagram and reveals it one depth level at a time.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/alchemytree/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.playCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.elementsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// openCache opens the configured backend. A file cache that cannot be
// created degrades to no caching, as a cache is never required.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg, err := c.Config.CacheConfig()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	store, err := cache.Open(ctx, cfg)
	if err != nil {
		if cfg.Backend == cache.BackendFile {
			c.Logger.Warn("cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return nil, fmt.Errorf("open %s cache: %w", cfg.Backend, err)
	}
	return store, nil
}

// loadCatalog returns the configured element catalog and its content hash.
// Without a catalog path it returns nil and an empty hash, which selects the
// built-in catalog.
func (c *CLI) loadCatalog() (*recipe.Catalog, string, error) {
	path := c.Config.Catalog
	if path == "" {
		return nil, "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read catalog: %w", err)
	}
	cat, err := recipe.ParseCatalog(data)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return cat, cache.Hash(data), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory: the configured one, else the
// XDG default (~/.cache/alchemytree/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return config.CacheDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags are the layout options shared by every command that lays out
// a recipe. Zero values fall back to the config file.
type layoutFlags struct {
	format      string
	target      string
	hSpacing    float64
	vSpacing    float64
	parentEdges bool
	noCache     bool
	refresh     bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "input-format", "", "recipe format: json, yaml (default: from extension)")
	cmd.Flags().StringVar(&f.target, "target", "", "entry to lay out when the recipe file is an expansion with several entries")
	cmd.Flags().Float64Var(&f.hSpacing, "h-spacing", 0, "horizontal distance between slots (default from config)")
	cmd.Flags().Float64Var(&f.vSpacing, "v-spacing", 0, "vertical distance between depths (default from config)")
	cmd.Flags().BoolVar(&f.parentEdges, "parent-edges", false, "also draw a direct edge from every ingredient to its product")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when a cached layout exists")
}

// pipelineOptions builds pipeline options for the recipe file at path.
func (c *CLI) pipelineOptions(cmd *cobra.Command, path string, f *layoutFlags) (pipeline.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("read recipe: %w", err)
	}
	cat, catHash, err := c.loadCatalog()
	if err != nil {
		return pipeline.Options{}, err
	}

	format := f.format
	if format == "" {
		format = string(rio.FormatFromPath(path))
	}

	lc := c.Config.Layout
	opts := pipeline.Options{
		Recipe:            data,
		Format:            format,
		Target:            f.target,
		Catalog:           cat,
		CatalogHash:       catHash,
		Refresh:           f.refresh,
		HorizontalSpacing: lc.HorizontalSpacing,
		VerticalSpacing:   lc.VerticalSpacing,
		ParentEdges:       lc.ParentEdges,
		Logger:            c.Logger,
		TTL:               c.Config.Cache.TTL.Duration,
	}
	if cmd.Flags().Changed("h-spacing") {
		opts.HorizontalSpacing = f.hSpacing
	}
	if cmd.Flags().Changed("v-spacing") {
		opts.VerticalSpacing = f.vSpacing
	}
	if cmd.Flags().Changed("parent-edges") {
		opts.ParentEdges = f.parentEdges
	}
	return opts, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, strings.ToLower(f))
		}
	}
	return formats
}
