package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/alchemytree/pkg/cache"
	"github.com/matzehuels/alchemytree/pkg/layout"
	"github.com/matzehuels/alchemytree/pkg/observability"
	"github.com/matzehuels/alchemytree/pkg/recipe"
)

// Cache kinds reported to cache hooks.
const (
	cacheKindLayout   = "layout"
	cacheKindArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete decode → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Decode
	decodeStart := time.Now()
	tree, err := Decode(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Tree = tree
	result.Stats.DecodeTime = time.Since(decodeStart)

	// Stage 2: Layout
	layoutStart := time.Now()
	key := r.layoutKey(opts)
	g, layoutHit, err := r.layoutTree(ctx, tree, key, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.LayoutKey = key
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.EdgeCount = len(g.Edges)
	result.Stats.LevelCount = len(g.Levels)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"element", tree.Element.Name,
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"levels", len(g.Levels),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.renderWithKey(ctx, g, key, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Decode reads the recipe document in opts. Decoding is not cached.
func (r *Runner) Decode(ctx context.Context, opts Options) (*recipe.Node, error) {
	r.applyLogger(&opts)
	return Decode(ctx, opts)
}

// LayoutWithCacheInfo decodes the recipe in opts and lays it out, consulting
// the cache first. It returns whether the graph came from cache.
//
// A cached graph keeps the BuildID it was built with.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, opts Options) (*layout.Graph, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForDecode(); err != nil {
		return nil, false, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	key := r.layoutKey(opts)
	if !opts.Refresh {
		if g, err := r.loadGraph(ctx, key); err == nil {
			r.Logger.Debug("layout cache hit", "key", key)
			return g, true, nil
		}
	}

	tree, err := Decode(ctx, opts)
	if err != nil {
		return nil, false, err
	}
	opts.Refresh = true
	return r.layoutTree(ctx, tree, key, opts)
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, opts Options) (*layout.Graph, error) {
	g, _, err := r.LayoutWithCacheInfo(ctx, opts)
	return g, err
}

// layoutTree returns the cached graph under key or computes and stores one.
func (r *Runner) layoutTree(ctx context.Context, tree *recipe.Node, key string, opts Options) (*layout.Graph, bool, error) {
	if !opts.Refresh {
		if g, err := r.loadGraph(ctx, key); err == nil {
			r.Logger.Debug("layout cache hit", "key", key)
			return g, true, nil
		}
	}
	r.Logger.Debug("layout cache miss", "key", key)

	g, err := ComputeLayout(ctx, tree, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := MarshalGraph(g); err == nil {
		r.store(ctx, cacheKindLayout, key, data, opts.TTL)
	} else {
		r.Logger.Warn("layout not cached", "error", err)
	}
	return g, false, nil
}

// loadGraph returns the graph cached under key, or cache.ErrCacheMiss.
// Undecodable entries count as misses.
func (r *Runner) loadGraph(ctx context.Context, key string) (*layout.Graph, error) {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "error", err)
	}
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, cacheKindLayout)
		return nil, cache.ErrCacheMiss
	}
	g, err := UnmarshalGraph(data)
	if err != nil {
		r.Logger.Debug("discarding cached layout", "key", key, "error", err)
		hooks.OnCacheMiss(ctx, cacheKindLayout)
		return nil, cache.ErrCacheMiss
	}
	hooks.OnCacheHit(ctx, cacheKindLayout)
	return g, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// Artifacts are keyed by the graph's encoded content.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *layout.Graph, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if g == nil {
		_, err := RenderGraph(ctx, nil, opts)
		return nil, false, err
	}
	data, err := MarshalGraph(g)
	if err != nil {
		return nil, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	return r.renderWithKey(ctx, g, cache.Hash(data), opts)
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *layout.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return artifacts, err
}

func (r *Runner) renderWithKey(ctx context.Context, g *layout.Graph, graphKey string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	hooks := observability.Cache()

	// Try to get all formats from cache
	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(graphKey, opts.ArtifactKeyOpts(format)))
			if err != nil || !hit {
				hooks.OnCacheMiss(ctx, cacheKindArtifact)
				break
			}
			hooks.OnCacheHit(ctx, cacheKindArtifact)
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			r.Logger.Debug("artifact cache hit", "formats", opts.Formats)
			return artifacts, true, nil
		}
	}

	rendered, err := RenderGraph(ctx, g, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		r.store(ctx, cacheKindArtifact, r.Keyer.ArtifactKey(graphKey, opts.ArtifactKeyOpts(format)), data, opts.TTL)
	}
	return rendered, false, nil
}

func (r *Runner) store(ctx context.Context, kind, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "kind", kind, "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

// layoutKey derives the cache key of the graph for the recipe in opts.
func (r *Runner) layoutKey(opts Options) string {
	return r.Keyer.LayoutKey(RecipeHash(opts.Recipe), opts.LayoutKeyOpts())
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
