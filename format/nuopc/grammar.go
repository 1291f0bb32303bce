// Package nuopc parses NUOPC run configuration files (nuopc.runconfig,
// ESMF-style resource files) into editable documents.
//
// Top-level entries are "KEY: value ..." lines whose values are separated
// by spaces, and "NAME::" attribute blocks of "key = value" lines closed by
// a bare "::". Values are barewords, numbers with Fortran D exponents, and
// .true./.false. logicals. Keys are case-sensitive.
package nuopc

import (
	"fmt"
	"strings"

	"github.com/ardnew/confit/config"
	"github.com/ardnew/confit/format/internal/scan"
	"github.com/ardnew/confit/tree"
)

// Grammar implements [config.Grammar] for NUOPC run configuration files.
type Grammar struct{}

// Parse parses file text into an editable document. Keys keep their case.
func Parse(text string) (*config.Document, error) {
	return config.Parse(text, Grammar{}, true)
}

// Parse builds the lossless parse tree for text.
func (Grammar) Parse(text string) (*tree.Node, error) {
	p := &parser{source: text, lines: scan.Lines(text)}

	return p.parse()
}

type parser struct {
	source string
	lines  []string
	pos    int
}

func (p *parser) parse() (*tree.Node, error) {
	root := tree.NewNode("runconfig")

	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		p.pos++

		body := strings.TrimSuffix(line, "\n")
		trimmed := strings.TrimSpace(body)

		switch {
		case trimmed == "":
			root.Append(tree.NewToken("NEWLINE", line))

		case strings.HasPrefix(trimmed, "#"):
			root.Append(tree.NewToken("COMMENT", line))

		case trimmed == "::":
			return nil, p.errorf(1, "block terminator without an open block")

		default:
			if name, ok := strings.CutSuffix(trimmed, "::"); ok && isName(name) {
				stmt, err := p.block(line, name)
				if err != nil {
					return nil, err
				}

				root.Append(stmt)

				continue
			}

			stmt, err := p.statement(line, ':')
			if err != nil {
				return nil, err
			}

			root.Append(stmt)
		}
	}

	return root, nil
}

// block parses a "NAME::" attribute block through its closing "::" line.
func (p *parser) block(opener, name string) (*tree.Node, error) {
	start := p.pos // 1-based line of the opener

	body := strings.TrimSuffix(opener, "\n")
	lead, rest := scan.CutLead(body)

	stmt := tree.NewNode("key_block")
	if lead != "" {
		stmt.Append(tree.NewToken("WS", lead))
	}

	stmt.Append(
		tree.NewNode("key", tree.NewToken("NAME", name)),
		tree.NewToken("BLOCKSEP", rest[len(name):]),
	)

	if len(body) < len(opener) {
		stmt.Append(tree.NewToken("NEWLINE", "\n"))
	}

	blk := tree.NewNode("block")
	stmt.Append(blk)

	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		p.pos++

		inner := strings.TrimSuffix(line, "\n")
		trimmed := strings.TrimSpace(inner)

		switch {
		case trimmed == "":
			blk.Append(tree.NewToken("NEWLINE", line))

		case strings.HasPrefix(trimmed, "#"):
			blk.Append(tree.NewToken("COMMENT", line))

		case trimmed == "::":
			stmt.Append(tree.NewToken("BLOCKEND", line))

			return stmt, nil

		default:
			attr, err := p.statement(line, '=')
			if err != nil {
				return nil, err
			}

			blk.Append(attr)
		}
	}

	return nil, &config.ParseError{
		Line:    start,
		Column:  1,
		Message: fmt.Sprintf("block %s:: is never terminated", name),
		Source:  p.source,
	}
}

// statement parses one assignment line. Top-level entries separate key and
// value with ':', block attributes with '='. Multiple space-separated
// values form a list.
func (p *parser) statement(line string, sepByte byte) (*tree.Node, error) {
	body := strings.TrimSuffix(line, "\n")
	lead, rest := scan.CutLead(body)

	i := 0
	for i < len(rest) && isNameByte(rest[i]) {
		i++
	}

	key := rest[:i]
	if key == "" {
		return nil, p.errorf(len(lead)+1, "expected attribute name")
	}

	j := i
	for j < len(rest) && (rest[j] == ' ' || rest[j] == '\t') {
		j++
	}

	if j >= len(rest) || rest[j] != sepByte {
		return nil, p.errorf(len(lead)+j+1, "expected %q after %s", string(sepByte), key)
	}

	j++
	if sepByte == ':' && j < len(rest) && rest[j] == ':' {
		return nil, p.errorf(len(lead)+j+1, "unexpected ':' in value of %s", key)
	}

	for j < len(rest) && (rest[j] == ' ' || rest[j] == '\t') {
		j++
	}

	sep := rest[i:j]

	valueText, trail := scan.CutTrail(rest[j:])

	kind := "key_value"
	switch fields := len(strings.Fields(valueText)); {
	case fields == 0:
		kind = "key_null"
	case fields > 1:
		kind = "key_list"
	}

	stmt := tree.NewNode(kind)
	if lead != "" {
		stmt.Append(tree.NewToken("WS", lead))
	}

	stmt.Append(
		tree.NewNode("key", tree.NewToken("NAME", key)),
		tree.NewToken("SEP", sep),
	)

	appendWords(stmt, valueText)

	if trail != "" {
		stmt.Append(tree.NewToken("WS", trail))
	}

	if len(body) < len(line) {
		stmt.Append(tree.NewToken("NEWLINE", "\n"))
	}

	return stmt, nil
}

func (p *parser) errorf(col int, format string, args ...any) error {
	return &config.ParseError{
		Line:    p.pos,
		Column:  col,
		Message: fmt.Sprintf(format, args...),
		Source:  p.source,
	}
}

// appendWords appends a scalar node per space-separated word of s, keeping
// the exact whitespace runs between them as raw tokens.
func appendWords(stmt *tree.Node, s string) {
	k := 0
	for k < len(s) {
		if s[k] == ' ' || s[k] == '\t' {
			j := k
			for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
				j++
			}

			stmt.Append(tree.NewToken("WS", s[k:j]))
			k = j

			continue
		}

		j := k
		for j < len(s) && s[j] != ' ' && s[j] != '\t' {
			j++
		}

		stmt.Append(scalarNode(s[k:j]))
		k = j
	}
}

// scalarNode classifies one word and wraps it in its rule node. Unrecognized
// words such as "off", ".log", or "1:10:19" are identifiers.
func scalarNode(core string) *tree.Node {
	rule := "identifier"

	switch {
	case strings.EqualFold(core, ".true.") || strings.EqualFold(core, ".false."):
		rule = "logical"
	case scan.Quoted(core):
		rule = "string"
	default:
		if num, ok := scan.Number(core); ok {
			rule = num
		}
	}

	return tree.NewNode(rule, tree.NewToken(strings.ToUpper(rule), core))
}

func isName(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if !isNameByte(s[i]) {
			return false
		}
	}

	return true
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_'
}
