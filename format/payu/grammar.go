// Package payu parses the subset of YAML used by payu config.yaml files:
// mappings nested by indentation, "- " sequences, scalars, and # comments.
//
// A general YAML library normalizes indentation and comment alignment when
// it writes a document back out. Parsing with this repo's own engine instead
// keeps every byte of the original text, so edited configs differ from their
// source only in the values that changed.
package payu

import (
	"io"
	"strings"

	"github.com/ardnew/confit/config"
	"github.com/ardnew/confit/format/internal/scan"
	"github.com/ardnew/confit/tree"
)

// Grammar implements [config.Grammar] for payu job configuration files.
type Grammar struct{}

// Parse parses file text into an editable document. Keys keep their case.
func Parse(text string) (*config.Document, error) {
	return config.Parse(text, Grammar{}, true)
}

// Write copies the document, byte for byte, to w.
func Write(w io.Writer, doc *config.Document) error {
	_, err := io.WriteString(w, doc.String())

	return err
}

// Parse builds the lossless parse tree for text.
func (Grammar) Parse(text string) (*tree.Node, error) {
	p := &parser{source: text, lines: scan.Lines(text)}

	root := tree.NewNode("payu")
	if err := p.parseInto(root, -1); err != nil {
		return nil, err
	}

	return root, nil
}

type parser struct {
	source string
	lines  []string
	pos    int
}

// parseInto consumes the statements of one mapping into blk. The first
// statement deeper than parentIndent fixes the mapping's indent; scanning
// stops, without consuming, at the first statement at or above parentIndent.
func (p *parser) parseInto(blk *tree.Node, parentIndent int) error {
	indent := -1

	for p.pos < len(p.lines) {
		line := p.lines[p.pos]

		body := strings.TrimSuffix(line, "\n")
		trimmed := strings.TrimSpace(body)

		if trimmed == "" {
			blk.Append(tree.NewToken("NEWLINE", line))
			p.pos++

			continue
		}

		lead, rest := scan.CutLead(body)
		if strings.Contains(lead, "\t") {
			return p.errorAt(p.pos+1, 1, "tab in indentation")
		}

		if strings.HasPrefix(trimmed, "#") {
			if len(lead) <= parentIndent {
				return nil
			}

			blk.Append(tree.NewToken("COMMENT", line))
			p.pos++

			continue
		}

		if len(lead) <= parentIndent {
			return nil
		}

		if indent < 0 {
			indent = len(lead)
		}

		if len(lead) != indent {
			return p.errorAt(p.pos+1, len(lead)+1, "inconsistent indentation")
		}

		if strings.HasPrefix(rest, "-") {
			return p.errorAt(p.pos+1, len(lead)+1, "sequence item without a key")
		}

		stmt, err := p.statement(line, lead, rest)
		if err != nil {
			return err
		}

		blk.Append(stmt)
	}

	return nil
}

// statement parses one "key: ..." line, plus any sequence items or nested
// mapping the key introduces.
func (p *parser) statement(line, lead, rest string) (*tree.Node, error) {
	i := strings.IndexByte(rest, ':')
	if i <= 0 {
		return nil, p.errorAt(p.pos+1, len(lead)+1, "expected \"key:\"")
	}

	key := strings.TrimRight(rest[:i], " \t")

	j := i + 1
	for j < len(rest) && (rest[j] == ' ' || rest[j] == '\t') {
		j++
	}

	sep := rest[len(key):j]

	valueText, comment := splitComment(rest[j:])
	core, trail := scan.CutTrail(valueText)

	p.pos++

	if core != "" {
		stmt := tree.NewNode("key_value")
		appendKey(stmt, lead, key, sep)
		stmt.Append(scalarNode(core))
		appendTail(stmt, line, trail, comment)

		return stmt, nil
	}

	// Bare "key:" introduces a sequence, a nested mapping, or null,
	// depending on what follows.
	switch {
	case comment == "" && p.nextIsItem():
		stmt := tree.NewNode("key_list")
		appendKey(stmt, lead, key, sep)
		appendTail(stmt, line, trail, comment)

		if err := p.items(stmt, len(lead)); err != nil {
			return nil, err
		}

		return stmt, nil

	case p.nextIsNested(len(lead)):
		stmt := tree.NewNode("key_block")
		appendKey(stmt, lead, key, sep)
		appendTail(stmt, line, trail, comment)

		nested := tree.NewNode("block")
		stmt.Append(nested)

		if err := p.parseInto(nested, len(lead)); err != nil {
			return nil, err
		}

		return stmt, nil

	default:
		stmt := tree.NewNode("key_null")
		appendKey(stmt, lead, key, sep)
		appendTail(stmt, line, trail, comment)

		return stmt, nil
	}
}

// items consumes the "- value" lines of a sequence into stmt. Items must
// share one indent at least as deep as the key's.
func (p *parser) items(stmt *tree.Node, keyIndent int) error {
	indent := -1

	for p.pos < len(p.lines) {
		line := p.lines[p.pos]

		body := strings.TrimSuffix(line, "\n")
		lead, rest := scan.CutLead(body)

		if !strings.HasPrefix(rest, "-") || len(lead) < keyIndent {
			return nil
		}

		if indent < 0 {
			indent = len(lead)
		}

		if len(lead) != indent {
			return p.errorAt(p.pos+1, len(lead)+1, "inconsistent indentation in sequence")
		}

		k := 1
		for k < len(rest) && (rest[k] == ' ' || rest[k] == '\t') {
			k++
		}

		if k == 1 {
			return p.errorAt(p.pos+1, len(lead)+2, "expected space after \"-\"")
		}

		valueText, comment := splitComment(rest[k:])

		core, trail := scan.CutTrail(valueText)
		if core == "" {
			return p.errorAt(p.pos+1, len(lead)+k+1, "empty sequence item")
		}

		if lead != "" {
			stmt.Append(tree.NewToken("WS", lead))
		}

		stmt.Append(tree.NewToken("DASH", rest[:k]), scalarNode(core))
		appendTail(stmt, line, trail, comment)

		p.pos++
	}

	return nil
}

// nextIsItem reports whether the line at p.pos starts a sequence item.
func (p *parser) nextIsItem() bool {
	if p.pos >= len(p.lines) {
		return false
	}

	_, rest := scan.CutLead(strings.TrimSuffix(p.lines[p.pos], "\n"))

	return strings.HasPrefix(rest, "- ")
}

// nextIsNested reports whether a statement deeper than indent follows,
// looking past blank and comment lines without consuming them.
func (p *parser) nextIsNested(indent int) bool {
	for pos := p.pos; pos < len(p.lines); pos++ {
		body := strings.TrimSuffix(p.lines[pos], "\n")

		trimmed := strings.TrimSpace(body)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		lead, _ := scan.CutLead(body)

		return len(lead) > indent
	}

	return false
}

func appendKey(stmt *tree.Node, lead, key, sep string) {
	if lead != "" {
		stmt.Append(tree.NewToken("WS", lead))
	}

	stmt.Append(
		tree.NewNode("key", tree.NewToken("NAME", key)),
		tree.NewToken("SEP", sep),
	)
}

func appendTail(stmt *tree.Node, line, trail, comment string) {
	if trail != "" {
		stmt.Append(tree.NewToken("WS", trail))
	}

	if comment != "" {
		stmt.Append(tree.NewToken("COMMENT", comment))
	}

	if strings.HasSuffix(line, "\n") {
		stmt.Append(tree.NewToken("NEWLINE", "\n"))
	}
}

func (p *parser) errorAt(line, col int, msg string) error {
	return &config.ParseError{
		Line:    line,
		Column:  col,
		Message: msg,
		Source:  p.source,
	}
}

// splitComment cuts an unquoted trailing comment off s. A '#' opens a
// comment only at the start of the value or after whitespace.
func splitComment(s string) (value, comment string) {
	var quote byte

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '#' && (i == 0 || s[i-1] == ' ' || s[i-1] == '\t'):
			return s[:i], s[i:]
		}
	}

	return s, ""
}

// scalarNode classifies one scalar and wraps it in its rule node. Unquoted
// words containing a path separator are paths; other barewords such as
// "10GB" or "01:00:00" stay words.
func scalarNode(core string) *tree.Node {
	rule := "word"

	switch {
	case scan.Quoted(core):
		rule = "string"
	case strings.EqualFold(core, "true") || strings.EqualFold(core, "false"):
		rule = "truthy"
	case strings.Contains(core, "/"):
		rule = "path"
	default:
		if num, ok := scan.Number(core); ok {
			rule = num
		}
	}

	return tree.NewNode(rule, tree.NewToken(strings.ToUpper(rule), core))
}
