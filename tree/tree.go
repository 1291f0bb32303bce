// Package tree defines the concrete syntax tree shared by every grammar in
// this module.
//
// A parse tree retains every byte of its source text: rule structure lives in
// [Node] values, and all terminal text, including whitespace and comments,
// lives in [Token] leaves. Rendering a tree is therefore nothing more than
// concatenating its leaf lexemes in order, which is what makes lossless
// round-trip editing possible.
package tree

import (
	"strings"
)

// Child is a member of a [Node]'s ordered child sequence.
// Only [*Node] and [*Token] implement it.
type Child interface {
	child()
}

// Node is an interior node of the parse tree, labeled with the grammar rule
// that produced it. Its children preserve source order.
type Node struct {
	Rule     string
	Children []Child

	parent *Node
}

// Token is a leaf of the parse tree holding the raw lexeme text of a single
// terminal. Name identifies the terminal kind; Text is the exact source
// bytes. Text is rewritten in place when a value is updated.
type Token struct {
	Name string
	Text string
}

func (*Node) child()  {}
func (*Token) child() {}

// NewNode constructs a rule node with the given children.
func NewNode(rule string, children ...Child) *Node {
	return &Node{Rule: rule, Children: children}
}

// NewToken constructs a leaf token.
func NewToken(name, text string) *Token {
	return &Token{Name: name, Text: text}
}

// Parent returns the node's parent, or nil for the root (or a node that has
// not been annotated yet; see [AddParents]).
func (n *Node) Parent() *Node { return n.parent }

// Append adds children to the end of the node's child sequence.
func (n *Node) Append(children ...Child) {
	n.Children = append(n.Children, children...)
}

// Remove detaches the first child identical to c and reports whether a child
// was removed. Identity is pointer equality, not structural equality.
func (n *Node) Remove(c Child) bool {
	for i, have := range n.Children {
		if have == c {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)

			return true
		}
	}

	return false
}

// Nodes returns the node's immediate child rule nodes, skipping tokens.
func (n *Node) Nodes() []*Node {
	nodes := make([]*Node, 0, len(n.Children))

	for _, c := range n.Children {
		if sub, ok := c.(*Node); ok {
			nodes = append(nodes, sub)
		}
	}

	return nodes
}

// Find returns the first immediate child node with the given rule name,
// or nil if there is none.
func (n *Node) Find(rule string) *Node {
	for _, c := range n.Children {
		if sub, ok := c.(*Node); ok && sub.Rule == rule {
			return sub
		}
	}

	return nil
}

// FirstToken returns the node's first immediate token child, or nil.
func (n *Node) FirstToken() *Token {
	for _, c := range n.Children {
		if tok, ok := c.(*Token); ok {
			return tok
		}
	}

	return nil
}

// Copy returns a deep copy of the subtree rooted at n. Parent references
// inside the copy point at the copied nodes; the copy's root has no parent.
func (n *Node) Copy() *Node {
	dup := &Node{Rule: n.Rule, Children: make([]Child, 0, len(n.Children))}

	for _, c := range n.Children {
		switch have := c.(type) {
		case *Node:
			sub := have.Copy()
			sub.parent = dup
			dup.Children = append(dup.Children, sub)

		case *Token:
			dup.Children = append(dup.Children, &Token{Name: have.Name, Text: have.Text})
		}
	}

	return dup
}

// Render concatenates every leaf lexeme in the subtree rooted at n,
// reproducing the source text the subtree was parsed from (except at tokens
// whose text has been rewritten).
func (n *Node) Render() string {
	var sb strings.Builder

	n.render(&sb)

	return sb.String()
}

func (n *Node) render(sb *strings.Builder) {
	for _, c := range n.Children {
		switch have := c.(type) {
		case *Node:
			have.render(sb)

		case *Token:
			sb.WriteString(have.Text)
		}
	}
}
