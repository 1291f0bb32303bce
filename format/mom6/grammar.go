// Package mom6 parses MOM6 parameter files (MOM_input, MOM_override) into
// editable documents.
//
// The format is line oriented: "KEY = VALUE" assignments with optional "!"
// trailing comments, "NAME%" ... "%NAME" parameter blocks, "#" directive
// lines such as "#override", and both "!" line comments and "/* */" block
// comments. Keys are case-insensitive. Directives and comments are kept as
// raw text, invisible to key lookups but reproduced exactly on rendering.
package mom6

import (
	"fmt"
	"strings"

	"github.com/ardnew/confit/config"
	"github.com/ardnew/confit/format/internal/scan"
	"github.com/ardnew/confit/tree"
)

// Grammar implements [config.Grammar] for MOM6 parameter files.
type Grammar struct{}

// Parse parses file text into an editable document. Keys fold to upper case.
func Parse(text string) (*config.Document, error) {
	return config.Parse(text, Grammar{}, false)
}

// Parse builds the lossless parse tree for text.
func (Grammar) Parse(text string) (*tree.Node, error) {
	p := &parser{source: text, lines: scan.Lines(text)}

	return p.parse()
}

type parser struct {
	source string
	lines  []string
	pos    int // index of the next unread line
}

// openBlock tracks a "NAME%" block awaiting its "%NAME" terminator.
type openBlock struct {
	stmt *tree.Node // the key_block statement
	body *tree.Node // the block child receiving statements
	name string
	line int // 1-based line of the opener
}

func (p *parser) parse() (*tree.Node, error) {
	root := tree.NewNode("input")

	var stack []openBlock

	target := func() *tree.Node {
		if len(stack) > 0 {
			return stack[len(stack)-1].body
		}

		return root
	}

	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		p.pos++

		body := strings.TrimSuffix(line, "\n")
		trimmed := strings.TrimSpace(body)

		switch {
		case trimmed == "":
			target().Append(tree.NewToken("NEWLINE", line))

		case strings.HasPrefix(trimmed, "!"):
			target().Append(tree.NewToken("COMMENT", line))

		case strings.HasPrefix(trimmed, "#"):
			target().Append(tree.NewToken("DIRECTIVE", line))

		case strings.HasPrefix(trimmed, "/*"):
			raw, err := p.blockComment(line)
			if err != nil {
				return nil, err
			}

			target().Append(tree.NewToken("COMMENT", raw))

		case strings.HasPrefix(trimmed, "%"):
			name := strings.TrimSpace(trimmed[1:])
			if len(stack) == 0 {
				return nil, p.errorf(1, "block terminator %%%s without an open block", name)
			}

			top := stack[len(stack)-1]
			if !strings.EqualFold(name, top.name) {
				return nil, p.errorf(1, "block terminator %%%s does not match %s%%", name, top.name)
			}

			top.stmt.Append(tree.NewToken("BLOCKEND", line))
			stack = stack[:len(stack)-1]

		case strings.HasSuffix(trimmed, "%") && isName(trimmed[:len(trimmed)-1]):
			stmt, blkbody := blockOpener(body, line)
			target().Append(stmt)
			stack = append(stack, openBlock{
				stmt: stmt,
				body: blkbody,
				name: trimmed[:len(trimmed)-1],
				line: p.pos,
			})

		default:
			stmt, err := p.statement(line)
			if err != nil {
				return nil, err
			}

			target().Append(stmt)
		}
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]

		return nil, &config.ParseError{
			Line:    top.line,
			Column:  1,
			Message: fmt.Sprintf("block %s%% is never terminated", top.name),
			Source:  p.source,
		}
	}

	return root, nil
}

// blockComment consumes lines until the "*/" terminator, returning the raw
// comment text. The terminator's whole line is included.
func (p *parser) blockComment(first string) (string, error) {
	raw := first

	for !strings.Contains(raw, "*/") {
		if p.pos >= len(p.lines) {
			return "", p.errorf(1, "comment opened with /* is never closed")
		}

		raw += p.lines[p.pos]
		p.pos++
	}

	return raw, nil
}

// blockOpener builds the key_block statement for a "NAME%" line and returns
// it with the block child that will receive the block's statements.
func blockOpener(body, line string) (stmt, blk *tree.Node) {
	lead, rest := scan.CutLead(body)
	name := strings.TrimSuffix(strings.TrimRight(rest, " \t"), "%")
	trail := rest[len(name)+1:]

	stmt = tree.NewNode("key_block")
	if lead != "" {
		stmt.Append(tree.NewToken("WS", lead))
	}

	stmt.Append(
		tree.NewNode("key", tree.NewToken("NAME", name)),
		tree.NewToken("PERCENT", "%"),
	)

	if trail != "" {
		stmt.Append(tree.NewToken("WS", trail))
	}

	if len(body) < len(line) {
		stmt.Append(tree.NewToken("NEWLINE", "\n"))
	}

	blk = tree.NewNode("block")
	stmt.Append(blk)

	return stmt, blk
}

// statement parses one "KEY = VALUE" line, keeping every byte: leading
// whitespace, the separator around "=", spacing between list elements, and
// any trailing comment all become tokens of the statement.
func (p *parser) statement(line string) (*tree.Node, error) {
	body := strings.TrimSuffix(line, "\n")
	lead, rest := scan.CutLead(body)

	i := 0
	for i < len(rest) && isKeyByte(rest[i]) {
		i++
	}

	key := rest[:i]
	if key == "" {
		return nil, p.errorf(len(lead)+1, "expected parameter name")
	}

	j := i
	for j < len(rest) && (rest[j] == ' ' || rest[j] == '\t') {
		j++
	}

	if j >= len(rest) || rest[j] != '=' {
		return nil, p.errorf(len(lead)+j+1, "expected '=' after %s", key)
	}

	j++
	for j < len(rest) && (rest[j] == ' ' || rest[j] == '\t') {
		j++
	}

	sep := rest[i:j]

	raw, comment := splitComment(rest[j:])
	valueText, trail := scan.CutTrail(raw)

	kind := "key_value"
	switch {
	case valueText == "":
		kind = "key_null"
	case hasTopComma(valueText):
		kind = "key_list"
	}

	stmt := tree.NewNode(kind)
	if lead != "" {
		stmt.Append(tree.NewToken("WS", lead))
	}

	stmt.Append(
		tree.NewNode("key", tree.NewToken("NAME", key)),
		tree.NewToken("EQUALS", sep),
	)

	switch kind {
	case "key_value":
		stmt.Append(scalarNode(valueText))

	case "key_list":
		appendElements(stmt, valueText)
	}

	if trail != "" {
		stmt.Append(tree.NewToken("WS", trail))
	}

	if comment != "" {
		stmt.Append(tree.NewToken("COMMENT", comment))
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

// appendElements splits a list value on its top-level commas, appending a
// scalar node per element and raw tokens for the commas and spacing.
func appendElements(stmt *tree.Node, s string) {
	flush := func(part string) {
		core := strings.TrimSpace(part)
		if lead := part[:len(part)-len(strings.TrimLeft(part, " \t"))]; lead != "" {
			stmt.Append(tree.NewToken("WS", lead))
		}

		stmt.Append(scalarNode(core))

		if trail := part[len(strings.TrimRight(part, " \t")):]; trail != "" {
			stmt.Append(tree.NewToken("WS", trail))
		}
	}

	start := 0
	depth := 0

	var quote byte

	for k := 0; k < len(s); k++ {
		c := s[k]

		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}

		case c == '\'' || c == '"':
			quote = c

		case c == '(':
			depth++

		case c == ')':
			if depth > 0 {
				depth--
			}

		case c == ',' && depth == 0:
			flush(s[start:k])
			stmt.Append(tree.NewToken("COMMA", ","))
			start = k + 1
		}
	}

	flush(s[start:])
}

// scalarNode classifies one value lexeme and wraps it in its rule node.
// Anything that is not a recognized literal is an identifier, so barewords
// like Z* survive untyped rather than failing the parse.
func scalarNode(core string) *tree.Node {
	rule := "identifier"

	switch {
	case core == "True" || core == "False":
		rule = "bool"
	case scan.Quoted(core):
		rule = "string"
	case strings.HasPrefix(core, "(") && strings.HasSuffix(core, ")") && strings.Contains(core, ","):
		rule = "complex"
		if strings.ContainsAny(core, "Dd") {
			rule = "double_complex"
		}
	default:
		if num, ok := scan.Number(core); ok {
			rule = num
		}
	}

	return tree.NewNode(rule, tree.NewToken(strings.ToUpper(rule), core))
}

// splitComment separates a value region from its trailing "!" comment,
// ignoring exclamation marks inside quoted strings.
func splitComment(s string) (valueRegion, comment string) {
	var quote byte

	for k := 0; k < len(s); k++ {
		c := s[k]

		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}

		case c == '\'' || c == '"':
			quote = c

		case c == '!':
			return s[:k], s[k:]
		}
	}

	return s, ""
}

// hasTopComma reports whether s contains a comma outside quotes and
// parentheses, marking it as a list value.
func hasTopComma(s string) bool {
	depth := 0

	var quote byte

	for k := 0; k < len(s); k++ {
		c := s[k]

		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}

		case c == '\'' || c == '"':
			quote = c

		case c == '(':
			depth++

		case c == ')':
			if depth > 0 {
				depth--
			}

		case c == ',' && depth == 0:
			return true
		}
	}

	return false
}

// isName reports whether s is a bare block or parameter name.
func isName(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' {
			continue
		}

		return false
	}

	return true
}

// isKeyByte reports whether c may appear in a parameter name. The '%' in
// names like KPP%N_SMOOTH addresses a block member inline.
func isKeyByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_' || c == '%'
}
