package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	apierr "github.com/matzehuels/alchemytree/pkg/errors"
	"github.com/matzehuels/alchemytree/pkg/layout"
	"github.com/matzehuels/alchemytree/pkg/observability"
	"github.com/matzehuels/alchemytree/pkg/recipe"
)

// ComputeLayout analyzes root and builds its graph.
//
// Errors carry an [apierr.Code]: ErrCodeEmptyTree for a nil root,
// ErrCodeMalformedTree for a pair that does not hold two ingredients. The
// layout sentinels stay reachable through errors.Is.
func ComputeLayout(ctx context.Context, root *recipe.Node, opts Options) (*layout.Graph, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}

	var element string
	if root != nil {
		element = root.Element.Name
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, element, root.Count())
	start := time.Now()

	g, err := layout.Compute(root, opts.LayoutOptions())
	if err != nil {
		err = classifyLayout(err)
		hooks.OnLayoutComplete(ctx, element, 0, time.Since(start), err)
		return nil, err
	}

	hooks.OnLayoutComplete(ctx, element, len(g.Levels), time.Since(start), nil)
	return g, nil
}

func classifyLayout(err error) error {
	switch {
	case errors.Is(err, layout.ErrEmptyTree):
		return apierr.Wrap(apierr.ErrCodeEmptyTree, err, "layout")
	case errors.Is(err, layout.ErrMalformedTree):
		return apierr.Wrap(apierr.ErrCodeMalformedTree, err, "layout")
	default:
		return apierr.Wrap(apierr.ErrCodeInternal, err, "layout")
	}
}

// =============================================================================
// Cache Encoding
// =============================================================================

// MarshalGraph encodes g as MessagePack using its JSON field names.
func MarshalGraph(g *layout.Graph) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(g); err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalGraph decodes a graph written by [MarshalGraph] and rebuilds its
// lookup tables.
func UnmarshalGraph(data []byte) (*layout.Graph, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	var g layout.Graph
	if err := dec.Decode(&g); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	g.Reindex()
	return &g, nil
}
