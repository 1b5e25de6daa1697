package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTree is returned when the recipe tree has no root.
	ErrEmptyTree = errors.New("recipe tree has no root")

	// ErrMalformedTree is matched by every [MalformedTreeError].
	ErrMalformedTree = errors.New("malformed recipe tree")

	// ErrAnalysisMismatch is returned by [Builder.Build] when the supplied
	// analysis was not produced from the same tree.
	ErrAnalysisMismatch = errors.New("analysis does not match recipe tree")
)

// MalformedTreeError describes an ingredient pair that does not hold exactly
// two ingredients.
type MalformedTreeError struct {
	Element string // Element produced by the pair
	Depth   int    // Depth of the producing element
	Pair    int    // Index of the pair among the element's recipes
	Size    int    // Number of members in the pair
	NilAt   int    // Index of a nil member, or -1
}

func (e *MalformedTreeError) Error() string {
	if e.NilAt >= 0 {
		return fmt.Sprintf("recipe %d of %q at depth %d: ingredient %d is missing", e.Pair, e.Element, e.Depth, e.NilAt)
	}
	return fmt.Sprintf("recipe %d of %q at depth %d: has %d ingredients, want 2", e.Pair, e.Element, e.Depth, e.Size)
}

// Is reports whether target is [ErrMalformedTree].
func (e *MalformedTreeError) Is(target error) bool { return target == ErrMalformedTree }

func mismatch(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAnalysisMismatch, fmt.Sprintf(format, args...))
}
