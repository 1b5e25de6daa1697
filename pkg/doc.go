// Package pkg provides the core libraries for Alchemytree recipe visualization.
//
// # Overview
//
// Alchemytree lays out the recipe tree of an element-combination game: every
// element is made by combining two ingredients, each of which is a basic
// element or made the same way. The tree is placed on a grid of depth levels
// and revealed to the player one level at a time.
//
// # Architecture
//
// The typical data flow:
//
//	Recipe document (tree or expansion response, JSON or YAML)
//	         ↓
//	    [io] package (decode into a recipe tree)
//	         ↓
//	    [layout] package (level widths, slots, node and edge placement)
//	         ↓
//	    [reveal] package (timed, level-by-level exposure)
//	         ↓
//	    [render/nodelink] package (DOT, SVG, PNG, PDF)
//
// # Quick Start
//
//	root, _ := io.ImportRecipe("brick.json", io.RecipeOptions{Target: "Brick"})
//	g, _ := layout.Compute(root, layout.Options{})
//
//	s := reveal.New(reveal.Options{
//	    Delay:    time.Second,
//	    OnChange: func(snap reveal.Snapshot) { draw(snap) },
//	})
//	defer s.Close()
//	s.Load(g)
//	s.Play()
//
// # Main Packages
//
// [recipe] - Recipe trees, elements, the element catalog, and conversion of
// raw expansion responses into trees.
//
// [layout] - Tree analysis (level widths, slot table) and the builder that
// positions nodes and styles combine and result edges.
//
// [reveal] - The staged-reveal scheduler: play, pause, speed up, reset, and
// snapshots of what is currently exposed.
//
// [render/nodelink] - Graphviz diagrams with nodes pinned to their layout
// positions.
//
// [pipeline] - Decode → layout → render with layout and artifact caching,
// shared by the CLI and the HTTP server.
//
// [cache] - Cache backends: null, memory, file, and Redis.
//
// [errors] - Coded errors mapped to HTTP statuses.
//
// [observability] - Hooks around pipeline stages and HTTP requests.
//
// [recipe]: https://pkg.go.dev/github.com/matzehuels/alchemytree/pkg/recipe
// [layout]: https://pkg.go.dev/github.com/matzehuels/alchemytree/pkg/layout
// [reveal]: https://pkg.go.dev/github.com/matzehuels/alchemytree/pkg/reveal
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/alchemytree/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/alchemytree/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/alchemytree/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/alchemytree/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/alchemytree/pkg/observability
//
// [io]: https://pkg.go.dev/github.com/matzehuels/alchemytree/pkg/io
package pkg
