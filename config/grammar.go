// Package config implements the format-independent document model: parsing
// source text into an editable [Document] backed by a lossless parse tree,
// reading and writing typed values through it, and rendering it back to text
// that is byte-identical wherever it was not edited.
//
// The model is format-neutral. Each file format supplies a [Grammar] that
// produces trees following the statement contract below; everything else,
// from key lookup through notation-preserving edits, is shared.
package config

import (
	"github.com/ardnew/confit/tree"
)

// Grammar turns source text into a lossless parse tree.
//
// Implementations must emit trees that follow the statement contract: each
// assignment is a node named key_value, key_list, key_block, or key_null
// containing a "key" child node, value nodes named after registered scalar
// kinds, and raw tokens for everything else (separators, comments, line
// terminators). Every byte of the input must appear in exactly one token so
// that rendering the tree reproduces the source.
type Grammar interface {
	Parse(text string) (*tree.Node, error)
}

// Parse parses source text into an editable [Document].
//
// A newline is appended before parsing so grammars can treat end-of-line as
// a statement terminator even when the source does not end with one;
// [Document.String] removes it again. With caseSensitive false, keys fold to
// upper case on every lookup.
func Parse(text string, grammar Grammar, caseSensitive bool) (*Document, error) {
	root, err := grammar.Parse(text + "\n")
	if err != nil {
		return nil, err
	}

	tree.AddParents(root)

	return interpret(root, !caseSensitive)
}
