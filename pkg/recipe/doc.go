// Package recipe defines the crafting-recipe tree consumed by the layout engine.
//
// # Overview
//
// A recipe tree describes every discovered way to produce a target element.
// Each [Node] holds an [Element] and an ordered list of ingredient pairs. A
// [Pair] is an AND-node: its two members combine into the parent element.
// Several pairs under one node are alternative (OR) recipes for that element.
// Basic elements have no pairs.
//
//	brick := &recipe.Node{
//	    Element: recipe.Element{Name: "Brick"},
//	    Children: []recipe.Pair{
//	        {recipe.Leaf(recipe.Element{Name: "Mud"}), recipe.Leaf(recipe.Element{Name: "Fire", IsBasic: true})},
//	    },
//	}
//
// The same element name may appear at several positions in a tree; nothing is
// deduplicated across branches. Each Node owns its subtree exclusively.
//
// # Collaborator Responses
//
// Recipe search runs in an external service that answers with a loosely typed
// expansion: a map from element name to a list of pairs, where each ingredient
// is either a plain name or a nested expansion. [ParseExpansion] decodes that
// response into the tagged [Ingredient] variant ([LeafIngredient] or
// [Expansion]) and [Catalog.Tree] converts it into a [Node] tree, resolving
// display glyphs and the basic/non-basic classification from the [Catalog].
//
// Conversion never drops or pads malformed pairs. Pair sizes are carried
// through so the layout engine can reject them.
package recipe
