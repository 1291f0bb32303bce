package config

import (
	"log/slog"

	"github.com/ardnew/confit/tree"
	"github.com/ardnew/confit/value"
)

// Statement rule names recognized by the interpreter. Grammars emit these
// around each assignment so documents of every format share one editing
// model.
const (
	ruleKey      = "key"
	ruleKeyValue = "key_value"
	ruleKeyList  = "key_list"
	ruleKeyBlock = "key_block"
	ruleKeyNull  = "key_null"
	ruleBlock    = "block"
)

// slot ties a key to the statement node that defines it and to the value
// nodes that edits rewrite in place.
type slot struct {
	stmt  *tree.Node   // key_value, key_list, key_block, or key_null
	elems []*tree.Node // scalar value nodes, in element order
}

// interpret builds the key table of a document from the immediate statement
// nodes of root. Statements with unrecognized rule names stay in the tree,
// invisible to lookups but intact in the rendered text.
func interpret(root *tree.Node, fold bool) (*Document, error) {
	doc := &Document{
		root:  root,
		fold:  fold,
		vals:  make(map[string]any),
		slots: make(map[string]slot),
	}

	for _, stmt := range root.Nodes() {
		var (
			val   any
			elems []*tree.Node
		)

		switch stmt.Rule {
		case ruleKeyValue:
			nodes := scalars(stmt)

			one, err := exactlyOne(stmt, nodes)
			if err != nil {
				return nil, err
			}

			v, err := parseScalar(one)
			if err != nil {
				return nil, err
			}

			val, elems = v, nodes

		case ruleKeyList:
			nodes := scalars(stmt)
			if len(nodes) == 0 {
				return nil, ErrNoValueFound.With(slog.String("key", statementKey(stmt)))
			}

			items := make([]any, len(nodes))
			for i, n := range nodes {
				v, err := parseScalar(n)
				if err != nil {
					return nil, err
				}

				items[i] = v
			}

			val, elems = &List{elems: nodes, items: items}, nodes

		case ruleKeyBlock:
			body := stmt.Find(ruleBlock)
			if body == nil {
				continue
			}

			nested, err := interpret(body, fold)
			if err != nil {
				return nil, err
			}

			val = nested

		case ruleKeyNull:
			val = nil

		default:
			continue
		}

		key := statementKey(stmt)
		if key == "" {
			return nil, NewError("statement missing key").
				With(slog.String("rule", stmt.Rule))
		}

		if fold {
			key = foldKey(key)
		}

		if _, seen := doc.slots[key]; !seen {
			doc.keys = append(doc.keys, key)
		}

		doc.vals[key] = val
		doc.slots[key] = slot{stmt: stmt, elems: elems}
	}

	return doc, nil
}

// statementKey returns the text of the key node inside a statement, or ""
// when the grammar emitted none.
func statementKey(stmt *tree.Node) string {
	k := stmt.Find(ruleKey)
	if k == nil {
		return ""
	}

	tok := k.FirstToken()
	if tok == nil {
		return ""
	}

	return tok.Text
}

// scalars returns the immediate children of stmt whose rules name registered
// scalar kinds, in source order.
func scalars(stmt *tree.Node) []*tree.Node {
	var out []*tree.Node

	for _, n := range stmt.Nodes() {
		if value.Registered(n.Rule) {
			out = append(out, n)
		}
	}

	return out
}

// exactlyOne enforces the single-value shape of key_value statements.
func exactlyOne(stmt *tree.Node, nodes []*tree.Node) (*tree.Node, error) {
	switch len(nodes) {
	case 0:
		return nil, ErrNoValueFound.With(slog.String("key", statementKey(stmt)))
	case 1:
		return nodes[0], nil
	default:
		return nil, ErrAmbiguousValue.With(
			slog.String("key", statementKey(stmt)),
			slog.Int("count", len(nodes)),
		)
	}
}

// parseScalar converts the lexeme of a value node into its typed value.
func parseScalar(n *tree.Node) (any, error) {
	h, _ := value.Lookup(n.Rule)

	tok := n.FirstToken()
	if tok == nil {
		return nil, NewError("value node missing lexeme").
			With(slog.String("rule", n.Rule))
	}

	v, err := h.Parse(tok.Text)
	if err != nil {
		return nil, ErrParse.Wrap(err).With(slog.String("lexeme", tok.Text))
	}

	return v, nil
}

// check reports whether v may replace the value held by node.
func check(node *tree.Node, v any) bool {
	h, ok := value.Lookup(node.Rule)

	return ok && h.Check(v)
}

// rewrite serializes v into the lexeme of node, preserving the notation of
// the text it replaces. The caller must have passed check first.
func rewrite(node *tree.Node, v any) {
	h, _ := value.Lookup(node.Rule)
	tok := node.FirstToken()
	tok.Text = h.Serialize(v, tok.Text)
}
