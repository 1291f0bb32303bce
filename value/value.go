// Package value implements the scalar type handlers shared by every grammar
// in this module.
//
// Each grammar rule that produces a scalar (an integer, a Fortran logical, a
// quoted string, and so on) has a [Handler] registered under its rule name.
// The handler bundles the three operations the document layer needs: checking
// a replacement value's type, parsing a lexeme into a typed value, and
// serializing a typed value back into a lexeme while preserving the notation
// used by the original text.
package value

import (
	"iter"
	"maps"
	"slices"
	"sync"
)

// Handler implements the uniform contract for a single scalar kind.
//
// Handlers are stateless and safe for concurrent use. They never touch the
// parse tree; callers pass the slot's current lexeme to Serialize so that
// notation cues (exponent marker, quote characters, boolean spelling) can be
// carried over into the replacement lexeme.
type Handler interface {
	// Check reports whether v's dynamic type matches this kind.
	Check(v any) bool

	// Parse converts a lexeme produced by the grammar into its typed value.
	// It is total over well-formed grammar output; an error indicates the
	// grammar matched text the handler cannot read, which is a grammar
	// defect rather than a user mistake.
	Parse(lexeme string) (any, error)

	// Serialize renders v as a lexeme. Check(v) must hold. The slot's
	// current lexeme supplies notation to preserve.
	Serialize(v any, lexeme string) string
}

// registry maps grammar rule names to their handlers. It is built once and
// never mutated afterward.
var registry = sync.OnceValue(func() map[string]Handler {
	return map[string]Handler{
		"logical":        logicalKind{},
		"bool":           boolKind{},
		"truthy":         truthyKind{},
		"integer":        intKind{},
		"float":          floatKind{},
		"double":         floatKind{dexp: true},
		"complex":        complexKind{},
		"double_complex": complexKind{dexp: true},
		"identifier":     identifierKind{},
		"string":         stringKind{},
		"path":           pathKind{},
		"word":           wordKind{},
	}
})

// Lookup returns the handler registered for a grammar rule name.
func Lookup(rule string) (Handler, bool) {
	h, ok := registry()[rule]

	return h, ok
}

// Registered reports whether a grammar rule name names a scalar kind.
func Registered(rule string) bool {
	_, ok := registry()[rule]

	return ok
}

// Rules returns an iterator over all registered rule names in sorted order.
func Rules() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(registry())))
}
