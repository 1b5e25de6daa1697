package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// digest builds "<kind>:<sha256>" over the JSON encoding of parts. Key
// option structs only hold plain fields, so encoding cannot fail.
func digest(kind string, parts ...any) string {
	h := sha256.New()
	_ = json.NewEncoder(h).Encode(parts)
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// LayoutKeyOpts lists every input besides the recipe document that changes a
// computed layout.
type LayoutKeyOpts struct {
	Target            string  `json:"target,omitempty"`
	Catalog           string  `json:"catalog,omitempty"` // Hash of a custom catalog
	HorizontalSpacing float64 `json:"h"`
	VerticalSpacing   float64 `json:"v"`
	ParentEdges       bool    `json:"parent_edges,omitempty"`
}

// ArtifactKeyOpts lists the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
	Levels   int    `json:"levels,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	LayoutKey(recipeHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes its inputs into "layout:<sha256>" and
// "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey generates a key for a laid-out graph.
func (DefaultKeyer) LayoutKey(recipeHash string, opts LayoutKeyOpts) string {
	return digest("layout", recipeHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return digest("artifact", layoutHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix, so that several consumers can share
// one backend without colliding.
//
// Example usage:
//
//	apiKeyer := NewScopedKeyer(NewDefaultKeyer(), "api:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(recipeHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(recipeHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
