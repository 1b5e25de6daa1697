package layout

import (
	"encoding/json"

	"github.com/matzehuels/alchemytree/pkg/recipe"
)

// Default spacings between slots and between depths, in user units.
const (
	DefaultHorizontalSpacing = 180.0
	DefaultVerticalSpacing   = 120.0
)

// Options configures node placement and edge emission.
// Zero spacings are replaced by the defaults.
type Options struct {
	HorizontalSpacing float64 `json:"horizontal_spacing,omitempty"`
	VerticalSpacing   float64 `json:"vertical_spacing,omitempty"`

	// ParentEdges emits an EdgeParent from every element to each of its
	// ingredients. Renderers that draw combine and result edges do not need them.
	ParentEdges bool `json:"parent_edges,omitempty"`
}

// WithDefaults returns a copy of o with zero spacings set to the defaults.
func (o Options) WithDefaults() Options {
	if o.HorizontalSpacing == 0 {
		o.HorizontalSpacing = DefaultHorizontalSpacing
	}
	if o.VerticalSpacing == 0 {
		o.VerticalSpacing = DefaultVerticalSpacing
	}
	return o
}

// NodeID identifies a node within one build. IDs are sequential per [Builder].
type NodeID string

// Point is a position in layout space. Y grows downward with depth.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a positioned occurrence of an element.
type Node struct {
	ID       NodeID         `json:"id"`
	Element  recipe.Element `json:"element"`
	Depth    int            `json:"depth"`
	Slot     int            `json:"slot"` // Horizontal index within the depth row
	Position Point          `json:"position"`
}

// EdgeKind distinguishes the three edge variants.
type EdgeKind string

const (
	// EdgeParent links an element to one of its ingredients (bookkeeping only).
	EdgeParent EdgeKind = "parent"
	// EdgeCombine links the two ingredients of one pair.
	EdgeCombine EdgeKind = "combine"
	// EdgeResult links an ingredient to the element its pair produces.
	EdgeResult EdgeKind = "result"
)

// Style is a rendering hint for an edge.
type Style struct {
	Stroke string  `json:"stroke,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Dash   string  `json:"dash,omitempty"` // SVG stroke-dasharray; empty for solid
}

// Dashed reports whether the style has a dash pattern.
func (s Style) Dashed() bool { return s.Dash != "" }

const recipeGreen = "#10b981"

// Style returns the reference rendering hint for edges of kind k.
func (k EdgeKind) Style() Style {
	switch k {
	case EdgeCombine:
		return Style{Stroke: recipeGreen, Width: 2}
	case EdgeResult:
		return Style{Stroke: recipeGreen, Width: 1, Dash: "5,5"}
	default:
		return Style{Stroke: "#9ca3af", Width: 1}
	}
}

// Edge is a directed connection between two nodes of one build.
type Edge struct {
	ID     string   `json:"id"`
	Source NodeID   `json:"source"`
	Target NodeID   `json:"target"`
	Kind   EdgeKind `json:"kind"`
	Style  Style    `json:"style"`
}

// Level is the bucket of nodes and edges revealed together at one depth.
type Level struct {
	Depth   int      `json:"depth"`
	NodeIDs []NodeID `json:"node_ids"`
	EdgeIDs []string `json:"edge_ids"`
}

// Graph is the laid-out form of one recipe tree.
//
// Nodes appear in traversal order. Levels is dense, indexed by depth from 0
// to the maximum depth. A Graph is not safe for concurrent mutation; once
// built it may be read from several goroutines.
type Graph struct {
	// BuildID is unique per build. Renderers use it to discard content that
	// belongs to a superseded build.
	BuildID string  `json:"build_id"`
	Nodes   []Node  `json:"nodes"`
	Edges   []Edge  `json:"edges"`
	Levels  []Level `json:"levels"`

	nodeIndex map[NodeID]int
	edgeIndex map[string]int
}

// Reindex rebuilds the id lookup tables. Call it after populating a Graph by
// means other than [Builder.Build] or JSON decoding.
func (g *Graph) Reindex() {
	g.nodeIndex = make(map[NodeID]int, len(g.Nodes))
	for i, n := range g.Nodes {
		g.nodeIndex[n.ID] = i
	}
	g.edgeIndex = make(map[string]int, len(g.Edges))
	for i, e := range g.Edges {
		g.edgeIndex[e.ID] = i
	}
}

// UnmarshalJSON decodes a graph and rebuilds its lookup tables.
func (g *Graph) UnmarshalJSON(data []byte) error {
	type plain Graph
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*g = Graph(p)
	g.Reindex()
	return nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	if g.nodeIndex == nil {
		g.Reindex()
	}
	i, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id string) (Edge, bool) {
	if g.edgeIndex == nil {
		g.Reindex()
	}
	i, ok := g.edgeIndex[id]
	if !ok {
		return Edge{}, false
	}
	return g.Edges[i], true
}

// LevelNodes returns copies of the nodes in the level at depth, in level order.
// It returns nil for a depth outside the graph.
func (g *Graph) LevelNodes(depth int) []Node {
	if depth < 0 || depth >= len(g.Levels) {
		return nil
	}
	ids := g.Levels[depth].NodeIDs
	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := g.Node(id); ok {
			out = append(out, n)
		}
	}
	return out
}

// LevelEdges returns copies of the edges in the level at depth, in level order.
// It returns nil for a depth outside the graph.
func (g *Graph) LevelEdges(depth int) []Edge {
	if depth < 0 || depth >= len(g.Levels) {
		return nil
	}
	ids := g.Levels[depth].EdgeIDs
	out := make([]Edge, 0, len(ids))
	for _, id := range ids {
		if e, ok := g.Edge(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// MaxDepth returns the deepest level index, or -1 for an empty graph.
func (g *Graph) MaxDepth() int { return len(g.Levels) - 1 }
