// Package pipeline provides the decode → layout → render pipeline shared by
// the CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Decode: read a recipe document (tree or expansion shape, JSON or YAML)
//  2. Layout: analyze the recipe tree and place every node and edge
//  3. Render: produce artifacts (JSON, DOT, SVG, PNG, PDF) from the graph
//
// Layouts and artifacts are cached through a [cache.Cache]. Layouts are
// stored as MessagePack; artifacts are stored as produced.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Recipe:  data,
//	    Target:  "Brick",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	tree, err := runner.Decode(ctx, opts)
//	g, err := runner.Layout(ctx, opts)
//	artifacts, err := runner.Render(ctx, g, opts)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/alchemytree/pkg/cache"
	"github.com/matzehuels/alchemytree/pkg/errors"
	rio "github.com/matzehuels/alchemytree/pkg/io"
	"github.com/matzehuels/alchemytree/pkg/layout"
	"github.com/matzehuels/alchemytree/pkg/recipe"
)

// =============================================================================
// Default Values
// =============================================================================

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = FormatSVG

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests; the recipe
// document itself travels separately.
type Options struct {
	// Decode options
	Recipe  []byte          `json:"-"`
	Format  string          `json:"format,omitempty"` // json, yaml, or empty to sniff
	Target  string          `json:"target,omitempty"` // Entry of an expansion document
	Catalog *recipe.Catalog `json:"-"`
	Refresh bool            `json:"refresh,omitempty"`

	// CatalogHash identifies a custom Catalog in cache keys. It is computed
	// by the caller that loaded the catalog; empty means the default one.
	CatalogHash string `json:"-"`

	// Layout options
	HorizontalSpacing float64 `json:"horizontal_spacing,omitempty"`
	VerticalSpacing   float64 `json:"vertical_spacing,omitempty"`
	ParentEdges       bool    `json:"parent_edges,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Show element ids in node labels
	Levels   int      `json:"levels,omitempty"`   // Render only depths < Levels; 0 renders everything

	// Runtime options (not serialized)
	Logger *log.Logger   `json:"-"`
	TTL    time.Duration `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the decoded recipe tree.
	Tree *recipe.Node

	// Graph is the laid-out graph.
	Graph *layout.Graph

	// LayoutKey is the cache key of Graph. It is stable across runs with
	// the same inputs, unlike Graph.BuildID.
	LayoutKey string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LevelCount int
	DecodeTime time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the graph came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(formatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateInputFormat checks a recipe document format. The empty string
// selects content sniffing.
func ValidateInputFormat(format string) error {
	if _, err := rio.ParseFormat(format); err != nil {
		return errors.Wrap(errors.ErrCodeUnsupported, err, "recipe format must be json or yaml")
	}
	return nil
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForDecode(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForDecode checks the recipe document and its format.
func (o *Options) ValidateForDecode() error {
	if len(o.Recipe) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "recipe document is required")
	}
	if err := ValidateInputFormat(o.Format); err != nil {
		return err
	}
	if o.Target != "" {
		if err := errors.ValidateElementName(o.Target); err != nil {
			return err
		}
	}
	o.setCommonDefaults()
	return nil
}

// ValidateForLayout checks spacings and applies runtime defaults.
// Zero spacings are left for layout.Options to fill in.
func (o *Options) ValidateForLayout() error {
	if err := errors.ValidateSpacing("horizontal_spacing", o.HorizontalSpacing); err != nil {
		return err
	}
	if err := errors.ValidateSpacing("vertical_spacing", o.VerticalSpacing); err != nil {
		return err
	}
	o.setCommonDefaults()
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	o.setCommonDefaults()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Levels < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "levels cannot be negative")
	}
	return ValidateFormats(o.Formats)
}

func (o *Options) setCommonDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.TTL == 0 {
		o.TTL = cache.DefaultTTL
	}
}

// LayoutOptions returns the options passed to the layout builder.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		HorizontalSpacing: o.HorizontalSpacing,
		VerticalSpacing:   o.VerticalSpacing,
		ParentEdges:       o.ParentEdges,
	}.WithDefaults()
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	lo := o.LayoutOptions()
	return cache.LayoutKeyOpts{
		Target:            o.Target,
		Catalog:           o.CatalogHash,
		HorizontalSpacing: lo.HorizontalSpacing,
		VerticalSpacing:   lo.VerticalSpacing,
		ParentEdges:       lo.ParentEdges,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
		Levels:   o.Levels,
	}
}
