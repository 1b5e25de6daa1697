package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	rio "github.com/matzehuels/alchemytree/pkg/io"
	"github.com/matzehuels/alchemytree/pkg/pipeline"
)

// layoutExt is appended to the recipe name for the default layout output.
const layoutExt = ".layout.json"

// layoutCommand creates the layout command for computing recipe tree layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [recipe]",
		Short: "Compute the node/edge layout of a recipe tree",
		Long: `Compute the node/edge layout of a recipe tree.

The recipe file holds either a resolved recipe tree or a raw expansion
response ({"Target": [[ingredient, ingredient], ...]}), as JSON or YAML.
The output is a layout.json file with positioned nodes, styled edges, and
the per-depth levels used for staged reveal. Pass it to 'render' to draw it.

Results are cached; use --refresh to recompute.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.pipelineOptions(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <recipe>.layout.json)")
	flags.register(cmd)

	return cmd
}

// runLayout lays out the recipe and writes the graph as JSON.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Computing layout...")
	spinner.Start()

	g, cacheHit, err := runner.LayoutWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", input) + layoutExt
	}
	if err := rio.ExportGraph(g, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(g.Nodes), len(g.Edges), len(g.Levels), cacheHit)
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}

// isLayoutFile reports whether path names a layout written by 'layout'.
func isLayoutFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), layoutExt)
}

// basePath derives the output path stem. Without an explicit output it is
// the input path minus its extension (and minus ".layout" for layout files).
// A known format extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		if isLayoutFile(input) {
			return input[:len(input)-len(layoutExt)]
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
