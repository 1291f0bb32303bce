package config

import (
	"errors"
	"iter"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/confit/tree"
)

// Document is an editable configuration file.
//
// Values are read and written by key. Scalar values are Go scalars (int,
// float64, complex128, bool, string, [value.Path]), multi-value keys are
// [*List], nested blocks are nested *Document, and keys written with no
// value hold nil. Edits rewrite lexemes inside the parse tree so [String]
// reproduces every untouched byte of the source.
//
// A Document and the nested Documents reachable from it share one parse
// tree and must not be used concurrently.
type Document struct {
	root  *tree.Node
	fold  bool
	keys  []string
	vals  map[string]any
	slots map[string]slot
}

// foldKey is the canonical spelling of a key in case-insensitive documents.
func foldKey(key string) string { return strings.ToUpper(key) }

func (d *Document) normalize(key string) string {
	if d.fold {
		return foldKey(key)
	}

	return key
}

// Len returns the number of keys defined in the document.
func (d *Document) Len() int { return len(d.keys) }

// Contains reports whether key is defined, including keys that hold null.
func (d *Document) Contains(key string) bool {
	_, ok := d.vals[d.normalize(key)]

	return ok
}

// Keys returns an iterator over the document's keys in source order. A key
// defined more than once appears at its first position with its last value.
func (d *Document) Keys() iter.Seq[string] {
	return slices.Values(d.keys)
}

// Get returns the value held by key.
func (d *Document) Get(key string) (any, error) {
	v, ok := d.vals[d.normalize(key)]
	if !ok {
		return nil, ErrKeyNotFound.With(slog.String("key", key))
	}

	return v, nil
}

// Set replaces the value held by key, rewriting its lexeme in place.
//
// The replacement must match the type already in the slot. Lists accept
// []any or *List of identical length and replace all elements, validating
// every element before touching the tree. Nested blocks cannot be
// reassigned. A null slot accepts only nil, which is a no-op.
func (d *Document) Set(key string, v any) error {
	k := d.normalize(key)

	current, ok := d.vals[k]
	if !ok {
		return ErrKeyNotFound.With(slog.String("key", key))
	}

	if current == nil {
		if v == nil {
			return nil
		}

		return ErrTypeMismatch.With(
			slog.String("key", key),
			slog.String("have", "null"),
		)
	}

	switch cur := current.(type) {
	case *Document:
		return ErrStructuralEdit.With(slog.String("key", key))

	case *List:
		items, isList := replacementItems(v)
		if !isList {
			return ErrTypeMismatch.With(
				slog.String("key", key),
				slog.String("have", "list"),
			)
		}

		if len(items) != cur.Len() {
			return ErrLengthMismatch.With(
				slog.String("key", key),
				slog.Int("have", cur.Len()),
				slog.Int("want", len(items)),
			)
		}

		return withKey(cur.SetRange(0, cur.Len(), items), key)

	default:
		s := d.slots[k]
		if !check(s.elems[0], v) {
			return ErrTypeMismatch.With(slog.String("key", key))
		}

		rewrite(s.elems[0], v)
		d.vals[k] = v

		return nil
	}
}

// Delete removes key and its entire statement, line terminator included,
// from the document.
func (d *Document) Delete(key string) error {
	k := d.normalize(key)

	s, ok := d.slots[k]
	if !ok {
		return ErrKeyNotFound.With(slog.String("key", key))
	}

	if p := s.stmt.Parent(); p != nil {
		p.Remove(s.stmt)
	}

	delete(d.vals, k)
	delete(d.slots, k)
	d.keys = slices.DeleteFunc(d.keys, func(have string) bool { return have == k })

	return nil
}

// String renders the document back to source text. Untouched bytes are
// reproduced exactly; the newline appended by [Parse] is removed. A document
// holding no keys renders as the empty string.
//
// Rendering walks a private copy of the subtree, so repeated calls stay
// independent of one another.
func (d *Document) String() string {
	if len(d.keys) == 0 {
		return ""
	}

	return strings.TrimSuffix(d.root.Copy().Render(), "\n")
}

// replacementItems extracts the element slice of a list replacement value.
func replacementItems(v any) ([]any, bool) {
	switch vs := v.(type) {
	case []any:
		return vs, true
	case *List:
		return vs.Values(), true
	default:
		return nil, false
	}
}

// withKey annotates a list edit error with the key it was addressed to.
func withKey(err error, key string) error {
	if err == nil {
		return nil
	}

	var ee *Error
	if errors.As(err, &ee) {
		return ee.With(slog.String("key", key))
	}

	return err
}
