package layout

import (
	"github.com/matzehuels/alchemytree/pkg/recipe"
)

// Slot addresses one horizontal position in one depth row.
type Slot struct {
	Depth int `json:"depth"`
	Index int `json:"index"`
}

// LevelWidths maps each depth to the number of nodes at that depth.
type LevelWidths map[int]int

// Total returns the number of nodes across all depths.
func (w LevelWidths) Total() int {
	total := 0
	for _, n := range w {
		total += n
	}
	return total
}

// SlotTable maps a node's slot to the slots assigned to its ingredients at
// the next depth: two per pair, in pair order. Entries are written once.
type SlotTable map[Slot][]int

// Children returns the slots of the two ingredients of the pair at index
// pair under the node at parent.
func (t SlotTable) Children(parent Slot, pair int) (left, right Slot, ok bool) {
	slots := t[parent]
	if pair < 0 || 2*pair+1 >= len(slots) {
		return Slot{}, Slot{}, false
	}
	d := parent.Depth + 1
	return Slot{d, slots[2*pair]}, Slot{d, slots[2*pair+1]}, true
}

// Analysis is the output of [Analyze].
type Analysis struct {
	Widths   LevelWidths
	Slots    SlotTable
	MaxDepth int

	// Order lists the slot of every visited node in visitation order.
	Order []Slot
}

// Analyze walks root once in pre-order and returns its level widths, slot
// assignments, and maximum depth.
//
// # Algorithm
//
// Starting at depth 0, slot 0, each visited node increments the width of its
// depth. For each ingredient pair, in order, the next two free slots at
// depth+1 are taken from a running counter seeded with the current width of
// depth+1, and recorded under the node's slot. Both members are then visited
// (left subtree, then right subtree) before the next pair.
//
// # Errors
//
// Analyze returns [ErrEmptyTree] for a nil root and a [*MalformedTreeError]
// for the first pair, in traversal order, that does not hold exactly two
// non-nil ingredients.
func Analyze(root *recipe.Node) (*Analysis, error) {
	if root == nil {
		return nil, ErrEmptyTree
	}

	a := &Analysis{
		Widths: LevelWidths{},
		Slots:  SlotTable{},
	}

	type item struct {
		node *recipe.Node
		at   Slot
	}
	stack := []item{{node: root, at: Slot{Depth: 0, Index: 0}}}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		d := it.at.Depth
		a.Widths[d]++
		a.Order = append(a.Order, it.at)
		if d > a.MaxDepth {
			a.MaxDepth = d
		}

		pairs := it.node.Children
		if len(pairs) == 0 {
			continue
		}

		next := a.Widths[d+1]
		slots := make([]int, 0, 2*len(pairs))
		for i, pair := range pairs {
			if err := checkPair(it.node, d, i, pair); err != nil {
				return nil, err
			}
			slots = append(slots, next, next+1)
			next += 2
		}
		if _, exists := a.Slots[it.at]; exists {
			return nil, mismatch("slot %d at depth %d assigned twice", it.at.Index, d)
		}
		a.Slots[it.at] = slots

		for i := len(pairs) - 1; i >= 0; i-- {
			left, right, _ := a.Slots.Children(it.at, i)
			stack = append(stack,
				item{node: pairs[i][1], at: right},
				item{node: pairs[i][0], at: left},
			)
		}
	}

	return a, nil
}

// checkPair enforces the two-ingredient invariant for pair i of n.
func checkPair(n *recipe.Node, depth, i int, pair recipe.Pair) error {
	if len(pair) != 2 {
		return &MalformedTreeError{Element: n.Element.Name, Depth: depth, Pair: i, Size: len(pair), NilAt: -1}
	}
	for j, member := range pair {
		if member == nil {
			return &MalformedTreeError{Element: n.Element.Name, Depth: depth, Pair: i, Size: len(pair), NilAt: j}
		}
	}
	return nil
}
