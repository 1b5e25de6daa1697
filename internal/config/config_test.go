package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/alchemytree/pkg/cache"
	apierr "github.com/matzehuels/alchemytree/pkg/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvCacheBackend, EnvRedisURL, EnvAddr, EnvCatalog} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg.Layout != want.Layout || cfg.Reveal != want.Reveal || cfg.Cache != want.Cache || cfg.Server != want.Server {
		t.Errorf("Load(missing) = %+v, want defaults %+v", cfg, want)
	}
	if cfg.Reveal.Delay.Duration != time.Second || cfg.Reveal.MinDelay.Duration != 250*time.Millisecond {
		t.Errorf("reveal defaults = %v/%v", cfg.Reveal.Delay, cfg.Reveal.MinDelay)
	}
	if cfg.Layout.HorizontalSpacing != 180 || cfg.Layout.VerticalSpacing != 120 {
		t.Errorf("layout defaults = %+v", cfg.Layout)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
catalog = "/etc/alchemy/elements.toml"

[layout]
horizontal_spacing = 200
parent_edges = true

[reveal]
delay = "2s"
min_delay = "100ms"

[cache]
backend = "memory"
ttl = "1h"

[server]
addr = ":9000"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Catalog != "/etc/alchemy/elements.toml" {
		t.Errorf("Catalog = %q", cfg.Catalog)
	}
	if cfg.Layout.HorizontalSpacing != 200 || cfg.Layout.VerticalSpacing != 120 || !cfg.Layout.ParentEdges {
		t.Errorf("Layout = %+v, want 200/120/parent edges", cfg.Layout)
	}
	if cfg.Reveal.Delay.Duration != 2*time.Second || cfg.Reveal.MinDelay.Duration != 100*time.Millisecond {
		t.Errorf("Reveal = %v/%v", cfg.Reveal.Delay, cfg.Reveal.MinDelay)
	}
	if cfg.Cache.Backend != cache.BackendMemory || cfg.Cache.TTL.Duration != time.Hour {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvCacheBackend, "redis")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvAddr, ":3000")

	path := writeConfig(t, "[cache]\nbackend = \"memory\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Backend != cache.BackendRedis || cfg.Cache.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("Cache = %+v, want env override", cfg.Cache)
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("Addr = %q, want :3000", cfg.Server.Addr)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[layout\n"},
		{"bad duration", "[reveal]\ndelay = \"soon\"\n"},
		{"negative spacing", "[layout]\nvertical_spacing = -5\n"},
		{"delay below minimum", "[reveal]\ndelay = \"100ms\"\nmin_delay = \"1s\"\n"},
		{"unknown backend", "[cache]\nbackend = \"s3\"\n"},
		{"redis without url", "[cache]\nbackend = \"redis\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("Load should fail")
			}
		})
	}
}

func TestValidateCodes(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = "s3"
	if err := cfg.Validate(); !apierr.Is(err, apierr.ErrCodeInvalidOption) {
		t.Errorf("Validate() = %v, want INVALID_OPTION", err)
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	if p, err := Path(); err != nil || p != filepath.Join("/tmp/xdg-config", appName, "config.toml") {
		t.Errorf("Path() = %q, %v", p, err)
	}
	if d, err := CacheDir(); err != nil || d != filepath.Join("/tmp/xdg-cache", appName) {
		t.Errorf("CacheDir() = %q, %v", d, err)
	}

	t.Setenv("XDG_CACHE_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if d, _ := CacheDir(); d != filepath.Join(home, ".cache", appName) {
		t.Errorf("CacheDir() = %q, want under %s/.cache", d, home)
	}
}

func TestCacheConfig(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	cfg := Default()
	cc, err := cfg.CacheConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cc.Backend != cache.BackendFile || cc.Dir != filepath.Join("/tmp/xdg-cache", appName) {
		t.Errorf("CacheConfig() = %+v", cc)
	}

	cfg.Cache.Backend = cache.BackendMemory
	cc, _ = cfg.CacheConfig()
	if cc.Dir != "" {
		t.Errorf("memory backend should not get a directory, got %q", cc.Dir)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	cfg.Reveal.Delay = Duration{1500 * time.Millisecond}
	cfg.Server.Addr = ":7070"

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := cfg.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Reveal.Delay.Duration != 1500*time.Millisecond || got.Server.Addr != ":7070" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestWriteErrors(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		path string
	}{
		{"path is a directory", dir},
		{"parent is a file", filepath.Join(blocker, "config.toml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Default().Write(tt.path); err == nil {
				t.Error("expected error")
			}
		})
	}
}
