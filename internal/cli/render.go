package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/alchemytree/pkg/errors"
	rio "github.com/matzehuels/alchemytree/pkg/io"
	"github.com/matzehuels/alchemytree/pkg/layout"
	"github.com/matzehuels/alchemytree/pkg/pipeline"
)

// renderOpts holds the render command flags that are not layout flags.
type renderOpts struct {
	output   string   // output file (one format) or base path (several)
	formats  []string // json, dot, svg, png, pdf
	detailed bool     // show depth and slot in node labels
	levels   int      // draw only the first n levels; 0 draws all
}

// renderCommand creates the render command for drawing recipe layouts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		ro         renderOpts
		flags      layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "render [recipe | layout.json]",
		Short: "Render a recipe tree as a node-link diagram",
		Long: `Render a recipe tree as a node-link diagram.

The input is a recipe file, which is laid out first, or a layout.json file
written by 'layout'. Nodes are pinned to their computed positions; combine
edges are solid and result edges dashed.

--levels n draws only the first n depth levels: the frame a staged reveal
shows after n steps.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ro.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(ro.formats); err != nil {
				return err
			}
			if ro.levels < 0 {
				return errors.New(errors.ErrCodeInvalidOption, "--levels cannot be negative")
			}
			return c.runRender(cmd, args[0], &ro, &flags)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().BoolVar(&ro.detailed, "detailed", false, "show depth and slot in node labels")
	cmd.Flags().IntVar(&ro.levels, "levels", 0, "render only the first n levels (0 renders all)")
	flags.register(cmd)

	return cmd
}

// runRender lays out (or loads) the graph and writes one file per format.
func (c *CLI) runRender(cmd *cobra.Command, input string, ro *renderOpts, flags *layoutFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var (
		g      *layout.Graph
		cached bool
	)
	if isLayoutFile(input) {
		if g, err = rio.ImportGraph(input); err != nil {
			return err
		}
		logger.Infof("Loaded layout: %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	} else {
		opts, err := c.pipelineOptions(cmd, input, flags)
		if err != nil {
			return err
		}
		if g, cached, err = runner.LayoutWithCacheInfo(ctx, opts); err != nil {
			return fmt.Errorf("compute layout: %w", err)
		}
	}

	opts := pipeline.Options{
		Formats:  ro.formats,
		Detailed: ro.detailed,
		Levels:   ro.levels,
		Logger:   c.Logger,
		TTL:      c.Config.Cache.TTL.Duration,
	}

	spinner := newSpinner(ctx, "Rendering...")
	spinner.Start()
	artifacts, err := runner.Render(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths := outputPaths(ro.output, input, ro.formats)
	for _, format := range ro.formats {
		if err := os.WriteFile(paths[format], artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[format], err)
		}
	}
	prog.done(fmt.Sprintf("Rendered %s", plural(len(ro.formats), "artifact")))

	printSuccess("Render complete")
	for _, format := range ro.formats {
		printFile(paths[format])
	}
	printStats(len(g.Nodes), len(g.Edges), len(g.Levels), cached)
	return nil
}

// outputPaths maps each format to its output file. A single format with an
// explicit output is written exactly there; otherwise files are named
// <base>.<format>.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}
