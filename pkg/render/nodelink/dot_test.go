package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/alchemytree/pkg/layout"
	"github.com/matzehuels/alchemytree/pkg/recipe"
	"github.com/matzehuels/alchemytree/pkg/reveal"
)

func mudGraph(t *testing.T) *layout.Graph {
	t.Helper()
	root := recipe.Combine(recipe.Element{Name: "Mud", Glyph: "🟫"},
		recipe.Leaf(recipe.Element{Name: "Water", IsBasic: true}),
		recipe.Leaf(recipe.Element{Name: "Earth", IsBasic: true}),
	)
	g, err := layout.Compute(root, layout.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(mudGraph(t), Options{})

	for _, want := range []string{
		"digraph G {",
		"layout=neato;",
		`"node-0" [label="🟫 Mud", pos="-1.25,-0.00!"`,
		`"node-1" [label="Water", pos="-2.50,-1.67!", fillcolor="#f3f4f6"]`,
		`"node-2" [label="Earth", pos="0.00,-1.67!"`,
		`"node-1" -> "node-2" [id="combine-node-1-node-2", color="#10b981", penwidth=2, dir=none]`,
		`"node-1" -> "node-0" [id="result-node-1-node-0", color="#10b981", penwidth=1, style=dashed]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Error("DOT should end with closing brace")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(mudGraph(t), Options{Detailed: true})
	if !strings.Contains(dot, `label="Water\ndepth: 1\nslot: 0"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestToDOTSubset(t *testing.T) {
	g := mudGraph(t)

	tests := []struct {
		name      string
		visible   *Subset
		nodes     int
		edges     int
		forbidden string
	}{
		{"FirstLevel", Levels(g, 1), 1, 0, "node-1"},
		{"AllLevels", Levels(g, 0), 3, 3, ""},
		{"TooMany", Levels(g, 9), 3, 3, ""},
		{"DanglingEdge", &Subset{Nodes: g.Nodes[:2], Edges: g.Edges}, 2, 1, "node-2"},
		{"Snapshot", FromSnapshot(reveal.Snapshot{Nodes: g.Nodes, Edges: g.Edges[:1]}), 3, 1, "result-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dot := ToDOT(g, Options{Visible: tt.visible})
			if got := strings.Count(dot, "pos="); got != tt.nodes {
				t.Errorf("%d nodes drawn, want %d", got, tt.nodes)
			}
			if got := strings.Count(dot, " -> "); got != tt.edges {
				t.Errorf("%d edges drawn, want %d", got, tt.edges)
			}
			if tt.forbidden != "" && strings.Contains(dot, tt.forbidden) {
				t.Errorf("DOT should not mention %q:\n%s", tt.forbidden, dot)
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.40 200.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.40 200.00" width="100" height="200"><g/></svg>`
	if out != want {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte("<svg><g/></svg>")
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("SVG without viewBox should be unchanged")
	}
}
