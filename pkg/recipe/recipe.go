package recipe

// Element is a named entity in the crafting domain.
// Elements are immutable values; copy them freely.
type Element struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Glyph   string `json:"emoji,omitempty"` // Display glyph (usually an emoji)
	IsBasic bool   `json:"isBasic"`         // Leaf ingredient not produced by any recipe
}

// Label returns the glyph and name joined by a space, or just the name when
// the element has no glyph.
func (e Element) Label() string {
	if e.Glyph == "" {
		return e.Name
	}
	return e.Glyph + " " + e.Name
}

// Pair is one combination of ingredients producing the parent element.
// A well-formed pair has exactly two non-nil members; the layout engine
// rejects anything else.
type Pair []*Node

// Node is one position in a recipe tree.
//
// The zero value is a valid leaf with an empty element.
type Node struct {
	Element  Element `json:"element"`
	Children []Pair  `json:"children"`
}

// Leaf returns a node for e with no recipes.
func Leaf(e Element) *Node {
	return &Node{Element: e}
}

// Combine returns a node for e whose only recipe is a + b.
func Combine(e Element, a, b *Node) *Node {
	return &Node{Element: e, Children: []Pair{{a, b}}}
}

// IsLeaf reports whether the node has no recipes.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Count returns the number of nodes in the subtree rooted at n, including n.
// Nil pair members are not counted. Count returns 0 for a nil node.
func (n *Node) Count() int {
	count := 0
	n.each(func(*Node, int) { count++ })
	return count
}

// Depth returns the greatest distance from n to any node in its subtree.
// A leaf has depth 0. Depth returns -1 for a nil node.
func (n *Node) Depth() int {
	maxDepth := -1
	n.each(func(_ *Node, d int) {
		if d > maxDepth {
			maxDepth = d
		}
	})
	return maxDepth
}

// each visits every node in pre-order with its distance from n.
// It keeps an explicit stack so very deep trees cannot exhaust the goroutine stack.
func (n *Node) each(fn func(*Node, int)) {
	if n == nil {
		return
	}
	type item struct {
		node  *Node
		depth int
	}
	stack := []item{{n, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(it.node, it.depth)

		for i := len(it.node.Children) - 1; i >= 0; i-- {
			pair := it.node.Children[i]
			for j := len(pair) - 1; j >= 0; j-- {
				if pair[j] != nil {
					stack = append(stack, item{pair[j], it.depth + 1})
				}
			}
		}
	}
}
