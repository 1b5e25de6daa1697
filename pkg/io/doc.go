// Package io reads recipe files and imports and exports laid-out graphs.
//
// # Overview
//
// Recipe files describe the tree to lay out. They come in two shapes, each
// in JSON or YAML:
//
// The tree shape spells out every node. An element is either a name, looked
// up in the element catalog, or a full element object:
//
//	{
//	  "element": "Mud",
//	  "children": [
//	    [{"element": "Water"}, {"element": "Earth"}]
//	  ]
//	}
//
// The expansion shape is the response of the recipe search service, a map
// from the target element to its ingredient pairs, where an ingredient is a
// name or a nested single-key expansion:
//
//	{"Brick": [["Mud", "Fire"], ["Clay", {"Stone": [["Lava", "Air"]]}]]}
//
// A document whose top level has an "element" key is read as a tree; anything
// else is read as an expansion.
//
// # Import
//
// Use [ImportRecipe] to read a recipe from a file path, or [ReadRecipe] to read
// from any io.Reader:
//
//	root, err := io.ImportRecipe("brick.yaml", io.RecipeOptions{})
//
// Pairs are carried through with whatever size the file gives them. Validation
// of the two-ingredient rule is left to the layout engine, which reports the
// offending element and depth.
//
// # Graph Export
//
// [WriteGraph] and [ExportGraph] write a laid-out graph as indented JSON,
// including positions, edge style hints, and level buckets. [ReadGraph] and
// [ImportGraph] read it back with lookup tables rebuilt, so external renderers
// can consume a layout without linking the layout engine.
package io
