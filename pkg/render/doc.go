// Package render provides output conversion shared by recipe-graph renderers.
//
// # Overview
//
// The [nodelink] subpackage turns a laid-out [layout.Graph] into Graphviz DOT
// and renders it to SVG or PNG in-process. This package adds conversion of
// any SVG to PDF through an external converter ([ConverterTool]).
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [nodelink]: github.com/matzehuels/alchemytree/pkg/render/nodelink
// [layout.Graph]: github.com/matzehuels/alchemytree/pkg/layout.Graph
package render
