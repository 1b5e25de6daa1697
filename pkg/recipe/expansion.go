package recipe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrUnknownShape is returned when a collaborator response contains an
// ingredient that is neither a name nor a single-key nested expansion.
var ErrUnknownShape = errors.New("unknown ingredient shape")

// Ingredient is one member of a recipe in a collaborator response.
// It is either a [LeafIngredient] or an [*Expansion].
type Ingredient interface {
	// Name returns the element name of the ingredient.
	Name() string
	isIngredient()
}

// LeafIngredient is an ingredient given only by name, with no further expansion.
type LeafIngredient string

// Name returns the element name.
func (l LeafIngredient) Name() string { return string(l) }

func (LeafIngredient) isIngredient() {}

// Expansion is an element together with the recipes the collaborator resolved for it.
// Each recipe is expected to hold two ingredients, but the size is not enforced here.
type Expansion struct {
	Element string
	Recipes [][]Ingredient
}

// Name returns the element name.
func (x *Expansion) Name() string { return x.Element }

func (*Expansion) isIngredient() {}

// ParseExpansion decodes a collaborator response of the form
//
//	{"Brick": [["Mud", "Fire"], ["Clay", {"Stone": [["Lava", "Air"]]}]]}
//
// and returns the expansion for target. If target is empty and the response
// has exactly one key, that key is used. A response without an entry for
// target yields an expansion with no recipes.
func ParseExpansion(data []byte, target string) (*Expansion, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("decode expansion: %w", err)
	}
	if target == "" {
		if len(top) != 1 {
			return nil, fmt.Errorf("expansion has %d entries, target is required", len(top))
		}
		target = slices.Collect(maps.Keys(top))[0]
	}

	raw, ok := top[target]
	if !ok || isNull(raw) {
		return &Expansion{Element: target}, nil
	}
	recipes, err := decodeRecipes(raw)
	if err != nil {
		return nil, fmt.Errorf("expansion %s: %w", target, err)
	}
	return &Expansion{Element: target, Recipes: recipes}, nil
}

func decodeRecipes(raw json.RawMessage) ([][]Ingredient, error) {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("recipes: %w", err)
	}

	recipes := make([][]Ingredient, 0, len(list))
	for i, r := range list {
		var members []json.RawMessage
		if err := json.Unmarshal(r, &members); err != nil {
			return nil, fmt.Errorf("recipe %d: %w", i, err)
		}
		combo := make([]Ingredient, 0, len(members))
		for j, m := range members {
			ing, err := decodeIngredient(m)
			if err != nil {
				return nil, fmt.Errorf("recipe %d ingredient %d: %w", i, j, err)
			}
			combo = append(combo, ing)
		}
		recipes = append(recipes, combo)
	}
	return recipes, nil
}

func decodeIngredient(raw json.RawMessage) (Ingredient, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrUnknownShape
	}

	switch trimmed[0] {
	case '"':
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return nil, err
		}
		return LeafIngredient(name), nil
	case '{':
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &nested); err != nil {
			return nil, err
		}
		if len(nested) != 1 {
			return nil, fmt.Errorf("%w: nested expansion with %d keys", ErrUnknownShape, len(nested))
		}
		for name, body := range nested {
			if isNull(body) {
				return &Expansion{Element: name}, nil
			}
			recipes, err := decodeRecipes(body)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			return &Expansion{Element: name, Recipes: recipes}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownShape, truncate(trimmed, 32))
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Tree converts an expansion into a recipe tree.
//
// The root is never basic. Leaf ingredients take their basic flag, glyph, and
// id from the catalog. Nested expansions are non-basic. Recipe sizes are
// preserved, so a malformed recipe stays malformed in the resulting tree.
func (c *Catalog) Tree(x *Expansion) *Node {
	root := c.convert(x)
	root.Element.IsBasic = false
	return root
}

func (c *Catalog) convert(x *Expansion) *Node {
	n := &Node{Element: c.Element(x.Element)}
	n.Element.IsBasic = false
	for _, r := range x.Recipes {
		pair := make(Pair, 0, len(r))
		for _, ing := range r {
			switch v := ing.(type) {
			case *Expansion:
				pair = append(pair, c.convert(v))
			default:
				pair = append(pair, Leaf(c.Element(v.Name())))
			}
		}
		n.Children = append(n.Children, pair)
	}
	return n
}
