// Package scan holds the small lexing helpers shared by the format
// grammars: terminator-preserving line splitting, whitespace accounting,
// and numeric lexeme classification.
package scan

import (
	"regexp"
	"strings"
)

// Lines splits text into lines, each keeping its terminator. A final line
// without a terminator is returned as-is.
func Lines(text string) []string {
	var out []string

	for len(text) > 0 {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			return append(out, text)
		}

		out = append(out, text[:i+1])
		text = text[i+1:]
	}

	return out
}

// CutLead splits off leading spaces and tabs.
func CutLead(s string) (lead, rest string) {
	rest = strings.TrimLeft(s, " \t")

	return s[:len(s)-len(rest)], rest
}

// CutTrail splits off trailing spaces and tabs.
func CutTrail(s string) (rest, trail string) {
	rest = strings.TrimRight(s, " \t")

	return rest, s[len(rest):]
}

var (
	integerPattern = regexp.MustCompile(`^[+-]?[0-9]+$`)
	doublePattern  = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)[Dd][+-]?[0-9]+$`)
	floatPattern   = regexp.MustCompile(`^[+-]?(?:[0-9]+\.[0-9]*|\.[0-9]+)(?:[Ee][+-]?[0-9]+)?$|^[+-]?[0-9]+[Ee][+-]?[0-9]+$`)
)

// Number classifies a numeric lexeme, returning the scalar rule name
// "integer", "double" (Fortran D exponent), or "float". ok is false for
// anything that is not a plain numeric literal.
func Number(core string) (rule string, ok bool) {
	switch {
	case integerPattern.MatchString(core):
		return "integer", true
	case doublePattern.MatchString(core):
		return "double", true
	case floatPattern.MatchString(core):
		return "float", true
	default:
		return "", false
	}
}

// Quoted reports whether core is a quoted string using ' or " with the same
// character on both ends.
func Quoted(core string) bool {
	return len(core) >= 2 &&
		(core[0] == '\'' || core[0] == '"') &&
		core[len(core)-1] == core[0]
}
