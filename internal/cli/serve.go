package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/alchemytree/internal/server"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		backend string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Endpoints:
  GET  /healthz       liveness and version
  POST /api/layout    lay out a recipe, optionally rendering artifacts
  POST /api/reveal    lay out a recipe and stream its levels as server-sent events

Defaults for spacing and reveal delays come from the config file. The cache
backend can be switched with --cache (file, memory, redis, none); redis
reads its address from cache.redis_url or ALCHEMYTREE_REDIS_URL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.Config.Server.Addr = addr
			}
			if backend != "" {
				c.Config.Cache.Backend = backend
				if err := c.Config.Validate(); err != nil {
					return err
				}
			}
			return c.runServe(cmd)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&backend, "cache", "", "cache backend: file, memory, redis, none (default from config)")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command) error {
	ctx := cmd.Context()

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	cat, catHash, err := c.loadCatalog()
	if err != nil {
		return err
	}

	cfg := c.Config
	srv := server.New(server.Config{
		Addr:              cfg.Server.Addr,
		Runner:            runner,
		Catalog:           cat,
		CatalogHash:       catHash,
		HorizontalSpacing: cfg.Layout.HorizontalSpacing,
		VerticalSpacing:   cfg.Layout.VerticalSpacing,
		ParentEdges:       cfg.Layout.ParentEdges,
		Delay:             cfg.Reveal.Delay.Duration,
		MinDelay:          cfg.Reveal.MinDelay.Duration,
		TTL:               cfg.Cache.TTL.Duration,
		Logger:            c.Logger,
	})

	printInfo("Serving on %s (cache: %s)", StyleHighlight.Render(cfg.Server.Addr), cfg.Cache.Backend)
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
