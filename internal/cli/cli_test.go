package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/alchemytree/internal/config"
)

const mudYAML = `
Mud:
  - [Water, Earth]
`

// isolate points every config and cache location at a fresh temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, key := range []string{config.EnvCacheBackend, config.EnvRedisURL, config.EnvAddr, config.EnvCatalog} {
		t.Setenv(key, "")
	}
	return dir
}

// runCLI executes the root command with args and returns what it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	prev := stdout
	stdout = &out
	t.Cleanup(func() { stdout = prev })

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg,png,pdf", []string{"svg", "png", "pdf"}},
		{" DOT , json ,", []string{"dot", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseFormats(tt.input)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfigFileApplies(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeFile(t, filepath.Join(dir, "alchemy.toml"), `
[layout]
horizontal_spacing = 100

[cache]
backend = "none"
`)
	out, err := runCLI(t, "--config", cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"horizontal_spacing", "100", "none", "(built-in)"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigInit(t *testing.T) {
	dir := isolate(t)

	out, err := runCLI(t, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	path := strings.TrimSpace(out)
	if want := filepath.Join(dir, "config", appName, "config.toml"); path != want {
		t.Fatalf("config path = %q, want %q", path, want)
	}

	if _, err := runCLI(t, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if cfg.Layout != config.Default().Layout {
		t.Errorf("written layout = %+v", cfg.Layout)
	}

	out, err = runCLI(t, "config", "init")
	if err != nil || !strings.Contains(out, "already exists") {
		t.Errorf("second init = %q, %v; want an already-exists warning", out, err)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeFile(t, filepath.Join(dir, "bad.toml"), "[layout]\nvertical_spacing = -5\n")
	if _, err := runCLI(t, "--config", cfgPath, "elements"); err == nil {
		t.Error("negative spacing in the config file should fail")
	}
}
