// Package config loads alchemytree settings from a TOML file and the
// environment.
//
// Every field has a built-in default, so a missing file is not an error.
// Command-line flags are applied by the caller after Load and take
// precedence over both the file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/alchemytree/pkg/cache"
	apierr "github.com/matzehuels/alchemytree/pkg/errors"
	"github.com/matzehuels/alchemytree/pkg/layout"
	"github.com/matzehuels/alchemytree/pkg/reveal"
)

const appName = "alchemytree"

// Environment overrides.
const (
	EnvCacheBackend = "ALCHEMYTREE_CACHE_BACKEND"
	EnvRedisURL     = "ALCHEMYTREE_REDIS_URL"
	EnvAddr         = "ALCHEMYTREE_ADDR"
	EnvCatalog      = "ALCHEMYTREE_CATALOG"
)

// DefaultAddr is the address the API server listens on.
const DefaultAddr = ":8080"

// Config is the contents of config.toml.
type Config struct {
	Catalog string       `toml:"catalog"` // Path to an element catalog; empty uses the built-in one
	Layout  LayoutConfig `toml:"layout"`
	Reveal  RevealConfig `toml:"reveal"`
	Cache   CacheConfig  `toml:"cache"`
	Server  ServerConfig `toml:"server"`
}

// LayoutConfig holds the spacing used when placing nodes.
type LayoutConfig struct {
	HorizontalSpacing float64 `toml:"horizontal_spacing"`
	VerticalSpacing   float64 `toml:"vertical_spacing"`
	ParentEdges       bool    `toml:"parent_edges"`
}

// RevealConfig holds the staged-reveal timing. Durations are strings like "250ms".
type RevealConfig struct {
	Delay    Duration `toml:"delay"`
	MinDelay Duration `toml:"min_delay"`
}

// CacheConfig selects the cache backend and the expiry of cached entries.
type CacheConfig struct {
	Backend  string   `toml:"backend"` // file, memory, redis, none
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// ServerConfig holds the HTTP server settings used by serve.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string such as "250ms" or "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			HorizontalSpacing: layout.DefaultHorizontalSpacing,
			VerticalSpacing:   layout.DefaultVerticalSpacing,
		},
		Reveal: RevealConfig{
			Delay:    Duration{reveal.DefaultDelay},
			MinDelay: Duration{reveal.DefaultMinDelay},
		},
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			TTL:     Duration{cache.DefaultTTL},
		},
		Server: ServerConfig{Addr: DefaultAddr},
	}
}

// Path returns the default config file location
// ($XDG_CONFIG_HOME/alchemytree/config.toml, else ~/.config/alchemytree/config.toml).
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the file cache directory
// ($XDG_CACHE_HOME/alchemytree, else ~/.cache/alchemytree).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the file at path over the defaults, then applies environment
// overrides. An empty path selects [Path]. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, fmt.Errorf("locate config: %w", err)
		}
		path = p
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvCacheBackend); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvCatalog); v != "" {
		c.Catalog = v
	}
}

// Validate checks value ranges. It does not open the cache or the catalog.
func (c *Config) Validate() error {
	if err := apierr.ValidateSpacing("layout.horizontal_spacing", c.Layout.HorizontalSpacing); err != nil {
		return err
	}
	if err := apierr.ValidateSpacing("layout.vertical_spacing", c.Layout.VerticalSpacing); err != nil {
		return err
	}
	if err := apierr.ValidateDelay(c.Reveal.Delay.Duration, c.Reveal.MinDelay.Duration); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendMemory, cache.BackendRedis, cache.BackendNone:
	default:
		return apierr.New(apierr.ErrCodeInvalidOption, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == cache.BackendRedis && c.Cache.RedisURL == "" {
		return apierr.New(apierr.ErrCodeInvalidOption, "cache.redis_url is required for the redis backend")
	}
	if c.Cache.TTL.Duration < 0 {
		return apierr.New(apierr.ErrCodeInvalidOption, "cache.ttl cannot be negative")
	}
	return nil
}

// CacheConfig returns the settings for [cache.Open]. The file backend falls
// back to [CacheDir] when no directory is configured.
func (c *Config) CacheConfig() (cache.Config, error) {
	cfg := cache.Config{
		Backend:  c.Cache.Backend,
		Dir:      c.Cache.Dir,
		RedisURL: c.Cache.RedisURL,
		Prefix:   cache.DefaultRedisPrefix,
	}
	if cfg.Backend == cache.BackendFile && cfg.Dir == "" {
		dir, err := CacheDir()
		if err != nil {
			return cache.Config{}, fmt.Errorf("locate cache dir: %w", err)
		}
		cfg.Dir = dir
	}
	return cfg, nil
}

// Write encodes c as TOML to path, creating parent directories.
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
