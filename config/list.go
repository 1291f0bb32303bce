package config

import (
	"log/slog"
	"slices"

	"github.com/ardnew/confit/tree"
)

// List is the editable view of a multi-value key. Element edits rewrite the
// underlying parse tree in place. The separators between elements belong to
// the tree, not the list, so a List can never grow or shrink.
type List struct {
	elems []*tree.Node
	items []any
}

// Len returns the number of elements.
func (l *List) Len() int { return len(l.items) }

// At returns the element at index i. Like a slice access, it panics when i
// is out of range.
func (l *List) At(i int) any { return l.items[i] }

// Values returns a copy of the elements as a plain slice.
func (l *List) Values() []any { return slices.Clone(l.items) }

// Set replaces the element at index i, preserving the notation of the
// lexeme it overwrites. Like a slice access, it panics when i is out of
// range.
func (l *List) Set(i int, v any) error {
	if !check(l.elems[i], v) {
		return ErrTypeMismatch.With(slog.Int("index", i))
	}

	rewrite(l.elems[i], v)
	l.items[i] = v

	return nil
}

// SetRange replaces the elements in [from, to) with vs, which must hold
// exactly to-from values. Every replacement is validated before any element
// is written, so a failed call leaves the list unchanged. The bounds follow
// slice semantics and panic when out of range.
func (l *List) SetRange(from, to int, vs []any) error {
	elems := l.elems[from:to]

	if len(vs) != len(elems) {
		return ErrLengthMismatch.With(
			slog.Int("have", len(elems)),
			slog.Int("want", len(vs)),
		)
	}

	for i, e := range elems {
		if !check(e, vs[i]) {
			return ErrTypeMismatch.With(slog.Int("index", from+i))
		}
	}

	for i, e := range elems {
		rewrite(e, vs[i])
		l.items[from+i] = vs[i]
	}

	return nil
}
