package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/alchemytree/pkg/cache"
	apierr "github.com/matzehuels/alchemytree/pkg/errors"
	rio "github.com/matzehuels/alchemytree/pkg/io"
	"github.com/matzehuels/alchemytree/pkg/observability"
	"github.com/matzehuels/alchemytree/pkg/recipe"
)

// Decode reads the recipe document in opts into a recipe tree.
//
// Errors carry an [apierr.Code]: ErrCodeUnsupported for an unknown format,
// ErrCodeInvalidInput for anything the document itself gets wrong.
func Decode(ctx context.Context, opts Options) (*recipe.Node, error) {
	if err := opts.ValidateForDecode(); err != nil {
		return nil, err
	}
	format, _ := rio.ParseFormat(opts.Format)

	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, string(format), opts.Target)
	start := time.Now()

	root, err := rio.DecodeRecipe(opts.Recipe, rio.RecipeOptions{
		Format:  format,
		Target:  opts.Target,
		Catalog: opts.Catalog,
	})
	if err != nil {
		err = classifyDecode(err)
		hooks.OnParseComplete(ctx, string(format), opts.Target, 0, time.Since(start), err)
		return nil, err
	}

	hooks.OnParseComplete(ctx, string(format), root.Element.Name, root.Count(), time.Since(start), nil)
	opts.Logger.Debug("decoded recipe", "element", root.Element.Name, "nodes", root.Count(), "depth", root.Depth())
	return root, nil
}

func classifyDecode(err error) error {
	switch {
	case errors.Is(err, rio.ErrUnsupportedFormat):
		return apierr.Wrap(apierr.ErrCodeUnsupported, err, "decode recipe")
	case errors.Is(err, rio.ErrEmptyDocument):
		return apierr.Wrap(apierr.ErrCodeEmptyTree, err, "decode recipe")
	default:
		return apierr.Wrap(apierr.ErrCodeInvalidInput, err, "decode recipe")
	}
}

// RecipeHash identifies a recipe document in cache keys. The format and
// target are part of the key separately.
func RecipeHash(data []byte) string {
	return cache.Hash(data)
}
