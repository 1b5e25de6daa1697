package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	rio "github.com/matzehuels/alchemytree/pkg/io"
)

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"from recipe", "", "recipes/brick.json", "recipes/brick"},
		{"from yaml recipe", "", "brick.yaml", "brick"},
		{"from layout", "", "out/brick.layout.json", "out/brick"},
		{"output with format ext", "diagram.svg", "brick.json", "diagram"},
		{"output without ext", "out/diagram", "brick.json", "out/diagram"},
		{"output with other ext", "diagram.v2", "brick.json", "diagram.v2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []string
		want    map[string]string
	}{
		{"single explicit", "tree.svg", []string{"svg"}, map[string]string{"svg": "tree.svg"}},
		{"single derived", "", []string{"png"}, map[string]string{"png": "brick.png"}},
		{"multiple derived", "", []string{"svg", "dot"}, map[string]string{"svg": "brick.svg", "dot": "brick.dot"}},
		{"multiple with base", "out/tree.svg", []string{"svg", "pdf"}, map[string]string{"svg": "out/tree.svg", "pdf": "out/tree.pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths(tt.output, "brick.yaml", tt.formats)
			if len(got) != len(tt.want) {
				t.Fatalf("outputPaths = %v, want %v", got, tt.want)
			}
			for f, p := range tt.want {
				if got[f] != p {
					t.Errorf("outputPaths[%s] = %q, want %q", f, got[f], p)
				}
			}
		})
	}
}

func TestLayoutCommand(t *testing.T) {
	dir := isolate(t)
	recipe := writeFile(t, filepath.Join(dir, "mud.yaml"), mudYAML)

	out, err := runCLI(t, "layout", recipe, "--no-cache", "--h-spacing", "100")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if !strings.Contains(out, "3 nodes") || !strings.Contains(out, "2 levels") {
		t.Errorf("layout output = %q", out)
	}

	g, err := rio.ImportGraph(filepath.Join(dir, "mud.layout.json"))
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	water, ok := g.Node("node-1")
	if !ok || water.Element.Name != "Water" || water.Position.X != -100 || water.Position.Y != 120 {
		t.Errorf("node-1 = %+v", water)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := isolate(t)
	recipe := writeFile(t, filepath.Join(dir, "mud.yaml"), mudYAML)

	if _, err := runCLI(t, "render", recipe, "-f", "dot,json", "--levels", "1"); err != nil {
		t.Fatalf("render: %v", err)
	}
	dot, err := os.ReadFile(filepath.Join(dir, "mud.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), `"node-0"`) || strings.Contains(string(dot), `"node-1"`) {
		t.Errorf("first-level dot should hold only the root:\n%s", dot)
	}
	if _, err := rio.ImportGraph(filepath.Join(dir, "mud.json")); err != nil {
		t.Errorf("json artifact: %v", err)
	}

	// A layout file is rendered without laying out again.
	if _, err := runCLI(t, "layout", recipe, "-o", filepath.Join(dir, "saved.layout.json")); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "full.dot")
	if _, err := runCLI(t, "render", filepath.Join(dir, "saved.layout.json"), "-f", "dot", "-o", out); err != nil {
		t.Fatalf("render layout: %v", err)
	}
	full, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(full), `"node-2"`) {
		t.Errorf("full dot missing node-2:\n%s", full)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	dir := isolate(t)
	recipe := writeFile(t, filepath.Join(dir, "mud.yaml"), mudYAML)
	malformed := writeFile(t, filepath.Join(dir, "bad.json"), `{"Mud": [["Water"]]}`)

	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"render", recipe, "-f", "gif"}},
		{"negative levels", []string{"render", recipe, "--levels", "-1"}},
		{"missing file", []string{"render", filepath.Join(dir, "absent.json")}},
		{"malformed recipe", []string{"render", malformed, "-f", "dot"}},
		{"bad input format", []string{"layout", recipe, "--input-format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.args...); err == nil {
				t.Errorf("%v should fail", tt.args)
			}
		})
	}
}
