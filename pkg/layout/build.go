package layout

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/matzehuels/alchemytree/pkg/recipe"
)

// Builder emits positioned graphs from analyzed recipe trees.
//
// Node ids come from a counter owned by the Builder, so successive builds
// never reuse an id. A fresh Builder starts again at "node-0"; use one when
// identical ids across builds are wanted.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	opts Options
	next int
}

// NewBuilder returns a Builder that places nodes according to opts.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts.WithDefaults()}
}

// Compute analyzes root and builds its graph with a fresh [Builder].
func Compute(root *recipe.Node, opts Options) (*Graph, error) {
	a, err := Analyze(root)
	if err != nil {
		return nil, err
	}
	return NewBuilder(opts).Build(root, a)
}

// buildStep is one entry of the explicit traversal stack. A step with a nil
// node closes the pair recorded in pair, after both its subtrees are built.
type buildStep struct {
	node   *recipe.Node
	at     Slot
	parent NodeID
	out    *NodeID
	pair   *openPair
}

type openPair struct {
	left, right NodeID
	parent      NodeID
	depth       int // depth of the ingredients
}

// Build walks root in the same order as [Analyze] and returns the laid-out graph.
//
// If a is nil, root is analyzed first. Build returns [ErrEmptyTree] for a nil
// root, a [*MalformedTreeError] for a malformed pair, and an error matching
// [ErrAnalysisMismatch] when a does not describe root.
func (b *Builder) Build(root *recipe.Node, a *Analysis) (*Graph, error) {
	if root == nil {
		return nil, ErrEmptyTree
	}
	if a == nil {
		var err error
		if a, err = Analyze(root); err != nil {
			return nil, err
		}
	}

	g := &Graph{
		BuildID:   uuid.NewString(),
		Nodes:     make([]Node, 0, a.Widths.Total()),
		Levels:    make([]Level, a.MaxDepth+1),
		nodeIndex: make(map[NodeID]int, a.Widths.Total()),
		edgeIndex: make(map[string]int),
	}
	for d := range g.Levels {
		g.Levels[d] = Level{Depth: d, NodeIDs: []NodeID{}, EdgeIDs: []string{}}
	}

	stack := []buildStep{{node: root, at: Slot{Depth: 0, Index: a.Widths[0] / 2}}}
	for len(stack) > 0 {
		st := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if st.node == nil {
			p := st.pair
			b.addEdge(g, p.depth, EdgeCombine, p.left, p.right)
			b.addEdge(g, p.depth, EdgeResult, p.left, p.parent)
			b.addEdge(g, p.depth, EdgeResult, p.right, p.parent)
			continue
		}

		id, err := b.addNode(g, a, st.node, st.at)
		if err != nil {
			return nil, err
		}
		if st.out != nil {
			*st.out = id
		}
		if st.parent != "" && b.opts.ParentEdges {
			b.addEdge(g, st.at.Depth, EdgeParent, st.parent, id)
		}

		pairs := st.node.Children
		if len(pairs) == 0 {
			continue
		}
		if got, want := len(a.Slots[st.at]), 2*len(pairs); got != want {
			return nil, mismatch("%q at depth %d has %d ingredient slots, want %d", st.node.Element.Name, st.at.Depth, got, want)
		}
		for i := len(pairs) - 1; i >= 0; i-- {
			if err := checkPair(st.node, st.at.Depth, i, pairs[i]); err != nil {
				return nil, err
			}
			left, right, _ := a.Slots.Children(st.at, i)
			p := &openPair{parent: id, depth: st.at.Depth + 1}
			stack = append(stack,
				buildStep{pair: p},
				buildStep{node: pairs[i][1], at: right, parent: id, out: &p.right},
				buildStep{node: pairs[i][0], at: left, parent: id, out: &p.left},
			)
		}
	}

	if got, want := len(g.Nodes), a.Widths.Total(); got != want {
		return nil, mismatch("built %d nodes, analysis counted %d", got, want)
	}
	return g, nil
}

// addNode places one node and files it into its level.
func (b *Builder) addNode(g *Graph, a *Analysis, n *recipe.Node, at Slot) (NodeID, error) {
	width := a.Widths[at.Depth]
	if at.Depth >= len(g.Levels) || at.Index < 0 || at.Index >= width {
		return "", mismatch("slot %d at depth %d is outside the analyzed rows", at.Index, at.Depth)
	}

	id := NodeID(fmt.Sprintf("node-%d", b.next))
	b.next++

	h, v := b.opts.HorizontalSpacing, b.opts.VerticalSpacing
	total := float64(width) * h
	node := Node{
		ID:      id,
		Element: n.Element,
		Depth:   at.Depth,
		Slot:    at.Index,
		Position: Point{
			X: -total/2 + float64(at.Index)*h,
			Y: float64(at.Depth) * v,
		},
	}

	g.nodeIndex[id] = len(g.Nodes)
	g.Nodes = append(g.Nodes, node)
	g.Levels[at.Depth].NodeIDs = append(g.Levels[at.Depth].NodeIDs, id)
	return id, nil
}

// addEdge appends an edge of kind k and files it into the level at depth.
func (b *Builder) addEdge(g *Graph, depth int, k EdgeKind, from, to NodeID) {
	var id string
	switch k {
	case EdgeCombine:
		id = fmt.Sprintf("combine-%s-%s", from, to)
	case EdgeResult:
		id = fmt.Sprintf("result-%s-%s", from, to)
	default:
		id = fmt.Sprintf("edge-%s-%s", from, to)
	}

	g.edgeIndex[id] = len(g.Edges)
	g.Edges = append(g.Edges, Edge{ID: id, Source: from, Target: to, Kind: k, Style: k.Style()})
	g.Levels[depth].EdgeIDs = append(g.Levels[depth].EdgeIDs, id)
}
