// Package nodelink renders laid-out recipe graphs as node-link diagrams.
//
// # Overview
//
// This package is the reference render adapter for [layout.Graph]. It emits
// Graphviz DOT in which every node is pinned to the position computed by the
// layout engine, so Graphviz only routes edges and never moves nodes.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// To draw only part of the graph, pass a [Subset], either the first levels of
// the graph or whatever a reveal scheduler currently exposes:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Visible: nodelink.Levels(g, 2)})
//	dot := nodelink.ToDOT(g, nodelink.Options{Visible: nodelink.FromSnapshot(snap)})
//
// # Edge Styles
//
// Combine edges are drawn solid green without arrowheads, result edges dashed
// green with an arrow into the produced element, and parent edges grey. The
// colors come from [layout.EdgeKind.Style].
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering with the neato engine.
package nodelink
