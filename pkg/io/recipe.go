package io

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/alchemytree/pkg/recipe"
)

// Format is the encoding of a recipe document.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	// ErrUnsupportedFormat is returned for an unknown [Format].
	ErrUnsupportedFormat = errors.New("unsupported recipe format")

	// ErrEmptyDocument is returned when a recipe document holds no data.
	ErrEmptyDocument = errors.New("empty recipe document")
)

// RecipeOptions controls how a recipe document is decoded.
type RecipeOptions struct {
	// Format of the document. FormatAuto sniffs the content: documents
	// starting with '{' or '[' are JSON, anything else YAML.
	Format Format

	// Target selects the entry of an expansion document. It may be empty
	// when the expansion has a single entry. Tree documents ignore it.
	Target string

	// Catalog resolves element names. Nil means [recipe.DefaultCatalog].
	Catalog *recipe.Catalog
}

// FormatFromPath returns the format implied by a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	}
	return FormatAuto
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatAuto, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ReadRecipe decodes a recipe tree from r. ReadRecipe does not close r.
func ReadRecipe(r io.Reader, opts RecipeOptions) (*recipe.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return DecodeRecipe(data, opts)
}

// ImportRecipe reads the recipe file at path. When opts.Format is FormatAuto
// the file extension picks the format, falling back to content sniffing.
func ImportRecipe(path string, opts RecipeOptions) (*recipe.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if opts.Format == FormatAuto {
		opts.Format = FormatFromPath(path)
	}
	root, err := DecodeRecipe(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// DecodeRecipe decodes a recipe tree from a JSON or YAML document.
func DecodeRecipe(data []byte, opts RecipeOptions) (*recipe.Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}
	if opts.Catalog == nil {
		opts.Catalog = recipe.DefaultCatalog()
	}

	format := opts.Format
	if format == FormatAuto {
		format = sniff(data)
	}
	switch format {
	case FormatJSON:
	case FormatYAML:
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, err
		}
		data = converted
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(probe) == 0 {
		return nil, ErrEmptyDocument
	}
	if _, ok := probe["element"]; ok {
		return decodeTree(data, opts.Catalog)
	}

	x, err := recipe.ParseExpansion(data, opts.Target)
	if err != nil {
		return nil, err
	}
	return opts.Catalog.Tree(x), nil
}

func sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if doc == nil {
		return nil, ErrEmptyDocument
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert yaml: %w", err)
	}
	return out, nil
}

// treeNode is the wire form of the tree shape.
type treeNode struct {
	Element  json.RawMessage `json:"element"`
	Children [][]*treeNode   `json:"children"`
}

func decodeTree(data []byte, c *recipe.Catalog) (*recipe.Node, error) {
	var root treeNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	return convertTree(&root, c, "root")
}

func convertTree(t *treeNode, c *recipe.Catalog, path string) (*recipe.Node, error) {
	e, err := decodeElement(t.Element, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	n := &recipe.Node{Element: e}
	for i, pair := range t.Children {
		p := make(recipe.Pair, len(pair))
		for j, member := range pair {
			if member == nil {
				continue
			}
			child, err := convertTree(member, c, fmt.Sprintf("%s/%s[%d][%d]", path, e.Name, i, j))
			if err != nil {
				return nil, err
			}
			p[j] = child
		}
		n.Children = append(n.Children, p)
	}
	if len(n.Children) > 0 {
		n.Element.IsBasic = false
	}
	return n, nil
}

// decodeElement accepts a bare name or an element object. Missing glyph and
// id are filled in from the catalog.
func decodeElement(raw json.RawMessage, c *recipe.Catalog) (recipe.Element, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return recipe.Element{}, errors.New("missing element")
	}

	if trimmed[0] == '"' {
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return recipe.Element{}, err
		}
		return c.Element(name), nil
	}

	var e recipe.Element
	if err := json.Unmarshal(trimmed, &e); err != nil {
		return recipe.Element{}, fmt.Errorf("element: %w", err)
	}
	if e.Name == "" {
		return recipe.Element{}, errors.New("element has no name")
	}
	known := c.Element(e.Name)
	if e.Glyph == "" {
		e.Glyph = known.Glyph
	}
	if e.ID == 0 {
		e.ID = known.ID
	}
	return e, nil
}
