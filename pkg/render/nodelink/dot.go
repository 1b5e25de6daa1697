package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/alchemytree/pkg/layout"
	"github.com/matzehuels/alchemytree/pkg/render"
	"github.com/matzehuels/alchemytree/pkg/reveal"
)

// pointsPerInch converts layout units, treated as points, to the inches
// Graphviz expects in pos attributes.
const pointsPerInch = 72.0

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds depth and slot to node labels.
	Detailed bool

	// Visible restricts the diagram to a subset of the graph.
	// When nil, the whole graph is drawn.
	Visible *Subset
}

// Subset is a set of nodes and edges to draw.
type Subset struct {
	Nodes []layout.Node
	Edges []layout.Edge
}

// Levels returns the nodes and edges of the first k levels of g.
// A k outside 1..len(g.Levels) selects every level.
func Levels(g *layout.Graph, k int) *Subset {
	if k <= 0 || k > len(g.Levels) {
		k = len(g.Levels)
	}
	s := &Subset{}
	for d := 0; d < k; d++ {
		s.Nodes = append(s.Nodes, g.LevelNodes(d)...)
		s.Edges = append(s.Edges, g.LevelEdges(d)...)
	}
	return s
}

// FromSnapshot returns the nodes and edges exposed in snap.
func FromSnapshot(snap reveal.Snapshot) *Subset {
	return &Subset{Nodes: snap.Nodes, Edges: snap.Edges}
}

// ToDOT converts a laid-out graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
//
// Nodes carry pinned positions (pos="x,y!"), and y is negated because
// Graphviz grows y upward. Edges whose endpoints are not both drawn are
// omitted.
func ToDOT(g *layout.Graph, opts Options) string {
	nodes, edges := g.Nodes, g.Edges
	if opts.Visible != nil {
		nodes, edges = opts.Visible.Nodes, opts.Visible.Edges
	}

	drawn := make(map[layout.NodeID]bool, len(nodes))
	for _, n := range nodes {
		drawn[n.ID] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowsize=0.7];\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", string(n.ID), strings.Join(nodeAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		if !drawn[e.Source] || !drawn[e.Target] {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", string(e.Source), string(e.Target), strings.Join(edgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n layout.Node, detailed bool) []string {
	label := n.Element.Label()
	if detailed {
		label += fmt.Sprintf("\ndepth: %d\nslot: %d", n.Depth, n.Slot)
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=\"%.2f,%.2f!\"", n.Position.X/pointsPerInch, -n.Position.Y/pointsPerInch),
	}
	switch {
	case n.Depth == 0:
		attrs = append(attrs, "fillcolor=\"#d1fae5\"", "penwidth=2")
	case n.Element.IsBasic:
		attrs = append(attrs, "fillcolor=\"#f3f4f6\"")
	}
	return attrs
}

func edgeAttrs(e layout.Edge) []string {
	attrs := []string{fmt.Sprintf("id=%q", e.ID)}
	if e.Style.Stroke != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", e.Style.Stroke))
	}
	if e.Style.Width > 0 {
		attrs = append(attrs, "penwidth="+strconv.FormatFloat(e.Style.Width, 'f', -1, 64))
	}
	if e.Style.Dashed() {
		attrs = append(attrs, "style=dashed")
	}
	if e.Kind == layout.EdgeCombine {
		attrs = append(attrs, "dir=none")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderDOT(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

// RenderPDF renders a DOT graph to SVG and converts it with [render.ToPDF].
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
