package recipe

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed catalog.toml
var defaultCatalogTOML string

// DefaultGlyph is shown for elements the catalog does not know.
const DefaultGlyph = "🧪"

// catalogFile is the on-disk TOML layout of a catalog.
type catalogFile struct {
	DefaultGlyph string         `toml:"default_glyph"`
	Basic        []string       `toml:"basic"`
	Elements     []catalogEntry `toml:"element"`
}

type catalogEntry struct {
	Name  string `toml:"name"`
	Glyph string `toml:"glyph"`
}

// Catalog resolves element names to display metadata.
//
// A Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	fallback string
	basic    map[string]bool
	elements []Element
	byName   map[string]int // name -> index into elements
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the catalog embedded in the binary.
// It covers the four basic elements and common derived elements.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := ParseCatalog([]byte(defaultCatalogTOML))
		if err != nil {
			panic(fmt.Sprintf("recipe: embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LoadCatalog reads a TOML catalog from path.
func LoadCatalog(path string) (*Catalog, error) {
	var f catalogFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return newCatalog(f)
}

// ParseCatalog decodes a TOML catalog.
//
// The format is:
//
//	default_glyph = "🧪"
//	basic = ["Air", "Earth", "Fire", "Water"]
//
//	[[element]]
//	name = "Air"
//	glyph = "💨"
//
// Element ids are assigned from the 1-based position in the element list.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return newCatalog(f)
}

func newCatalog(f catalogFile) (*Catalog, error) {
	c := &Catalog{
		fallback: f.DefaultGlyph,
		basic:    make(map[string]bool, len(f.Basic)),
		elements: make([]Element, 0, len(f.Elements)),
		byName:   make(map[string]int, len(f.Elements)),
	}
	if c.fallback == "" {
		c.fallback = DefaultGlyph
	}
	for _, name := range f.Basic {
		c.basic[name] = true
	}
	for _, e := range f.Elements {
		if e.Name == "" {
			return nil, fmt.Errorf("catalog element %d: empty name", len(c.elements)+1)
		}
		if _, dup := c.byName[e.Name]; dup {
			return nil, fmt.Errorf("catalog element %q: duplicate name", e.Name)
		}
		c.byName[e.Name] = len(c.elements)
		c.elements = append(c.elements, Element{
			ID:      len(c.elements) + 1,
			Name:    e.Name,
			Glyph:   e.Glyph,
			IsBasic: c.basic[e.Name],
		})
	}
	return c, nil
}

// Element returns the catalog entry for name. Unknown names get ID 0 and the
// fallback glyph; their basic flag still honors the catalog's basic list.
func (c *Catalog) Element(name string) Element {
	if i, ok := c.byName[name]; ok {
		e := c.elements[i]
		if e.Glyph == "" {
			e.Glyph = c.fallback
		}
		return e
	}
	return Element{Name: name, Glyph: c.fallback, IsBasic: c.basic[name]}
}

// Glyph returns the display glyph for name.
func (c *Catalog) Glyph(name string) string { return c.Element(name).Glyph }

// IsBasic reports whether name is a basic element.
func (c *Catalog) IsBasic(name string) bool { return c.basic[name] }

// Elements returns all catalog entries in id order.
func (c *Catalog) Elements() []Element {
	out := make([]Element, len(c.elements))
	copy(out, c.elements)
	return out
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int { return len(c.elements) }
