package layout

import "github.com/matzehuels/alchemytree/pkg/recipe"

func leaf(name string) *recipe.Node {
	return recipe.Leaf(recipe.Element{Name: name})
}

func node(name string, pairs ...recipe.Pair) *recipe.Node {
	return &recipe.Node{Element: recipe.Element{Name: name}, Children: pairs}
}

func pair(a, b *recipe.Node) recipe.Pair { return recipe.Pair{a, b} }

// brickTree is the reference scenario:
//
//	Brick = Mud + Fire | Clay + Stone
//	Mud   = Water + Earth
//	Stone = Lava + Air | Earth + Pressure
//	Lava  = Earth + Fire
func brickTree() *recipe.Node {
	lava := node("Lava", pair(leaf("Earth"), leaf("Fire")))
	stone := node("Stone",
		pair(lava, leaf("Air")),
		pair(leaf("Earth"), leaf("Pressure")),
	)
	mud := node("Mud", pair(leaf("Water"), leaf("Earth")))
	return node("Brick",
		pair(mud, leaf("Fire")),
		pair(leaf("Clay"), stone),
	)
}

// countPairs returns the number of ingredient pairs in the tree.
func countPairs(n *recipe.Node) int {
	if n == nil {
		return 0
	}
	total := len(n.Children)
	for _, p := range n.Children {
		for _, m := range p {
			total += countPairs(m)
		}
	}
	return total
}

// preorder lists (name, depth) for every node, recursively, in pre-order.
func preorder(n *recipe.Node, depth int, out *[]visit) {
	*out = append(*out, visit{n.Element.Name, depth})
	for _, p := range n.Children {
		for _, m := range p {
			preorder(m, depth+1, out)
		}
	}
}

type visit struct {
	name  string
	depth int
}
