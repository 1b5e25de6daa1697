package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apierr "github.com/matzehuels/alchemytree/pkg/errors"
	rio "github.com/matzehuels/alchemytree/pkg/io"
	"github.com/matzehuels/alchemytree/pkg/layout"
	"github.com/matzehuels/alchemytree/pkg/observability"
	"github.com/matzehuels/alchemytree/pkg/render"
	"github.com/matzehuels/alchemytree/pkg/render/nodelink"
)

// RenderGraph produces the artifacts named in opts.Formats.
//
// The DOT source is built once; Graphviz-backed formats then render
// concurrently. The first failure cancels the rest.
func RenderGraph(ctx context.Context, g *layout.Graph, opts Options) (map[string][]byte, error) {
	if g == nil {
		return nil, apierr.New(apierr.ErrCodeInvalidInput, "no graph to render")
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := renderFormats(ctx, g, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormats(ctx context.Context, g *layout.Graph, opts Options) (map[string][]byte, error) {
	dotOpts := nodelink.Options{Detailed: opts.Detailed}
	if opts.Levels > 0 {
		dotOpts.Visible = nodelink.Levels(g, opts.Levels)
	}
	dot := nodelink.ToDOT(g, dotOpts)

	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(opts.Formats))
	)
	eg, ctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := renderOne(ctx, g, dot, format)
			if errors.Is(err, render.ErrConverterMissing) {
				return apierr.Wrap(apierr.ErrCodeUnavailable, err, "render %s", format)
			}
			if err != nil {
				return apierr.Wrap(apierr.ErrCodeInternal, err, "render %s", format)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderOne(ctx context.Context, g *layout.Graph, dot, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		if err := rio.WriteGraph(g, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case FormatPNG:
		return nodelink.RenderPNG(ctx, dot)
	case FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}
