// Package layout converts a recipe tree into a positioned, level-bucketed graph.
//
// # Overview
//
// Layout runs in two passes over a [recipe.Node] tree:
//
//  1. [Analyze] walks the tree once, counting how many nodes occupy each depth
//     ([LevelWidths]) and pre-assigning every node's horizontal slot within its
//     depth ([SlotTable]).
//  2. [Builder.Build] walks the tree a second time in exactly the same order,
//     consuming the slot assignments, and emits positioned [Node] values,
//     typed [Edge] values, and one [Level] bucket per depth.
//
// [Compute] runs both passes with a fresh [Builder].
//
// # Traversal Order
//
// Both passes visit nodes in depth-first pre-order: a node, then for each
// ingredient pair in order, the full subtree of the left member followed by
// the full subtree of the right member. Both passes use an explicit stack, so
// arbitrarily deep trees do not grow the goroutine stack.
//
// Because pre-order never visits another node of depth d+1 between a parent
// and its children, a node's slot equals its visitation rank within its depth.
// [Analysis.Order] records the sequence of visited slots, and the nodes of a
// built [Graph] appear in the same sequence, which lets callers verify that
// the passes agree.
//
// # Placement
//
// Each depth forms a row centered on x = 0:
//
//	x = -widths[depth]*HorizontalSpacing/2 + slot*HorizontalSpacing
//	y = depth * VerticalSpacing
//
// The default spacings are 180 and 120 user units.
//
// # Edges and Levels
//
// For every ingredient pair the builder emits one [EdgeCombine] between the two
// ingredients and one [EdgeResult] from each ingredient to the element they
// produce. All three are filed into the level of the ingredients, since the
// ingredients gate their visibility. [EdgeParent] edges are optional
// bookkeeping edges from a node to each of its ingredients.
//
// # Errors
//
// Layout refuses a nil root ([ErrEmptyTree]) and any pair whose size is not
// exactly two or that has a nil member ([MalformedTreeError], matching
// [ErrMalformedTree]). Malformed pairs are never skipped, since skipping them
// in one pass but not the other would desynchronize the slot assignments.
package layout
