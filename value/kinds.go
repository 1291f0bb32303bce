package value

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// logicalKind handles Fortran logicals spelled ".true." and ".false.".
type logicalKind struct{}

func (logicalKind) Check(v any) bool { _, ok := v.(bool); return ok }

func (logicalKind) Parse(lexeme string) (any, error) {
	return strings.ToLower(lexeme) == ".true.", nil
}

func (logicalKind) Serialize(v any, _ string) string {
	if v.(bool) {
		return ".true."
	}

	return ".false."
}

// boolKind handles capitalized booleans spelled "True" and "False".
type boolKind struct{}

func (boolKind) Check(v any) bool { _, ok := v.(bool); return ok }

func (boolKind) Parse(lexeme string) (any, error) {
	return lexeme == "True", nil
}

func (boolKind) Serialize(v any, _ string) string {
	if v.(bool) {
		return "True"
	}

	return "False"
}

// truthyKind handles booleans whose capitalization varies between documents,
// "true" and "True" both being common. Serialization keeps the spelling of
// the lexeme it replaces.
type truthyKind struct{}

func (truthyKind) Check(v any) bool { _, ok := v.(bool); return ok }

func (truthyKind) Parse(lexeme string) (any, error) {
	return strings.EqualFold(lexeme, "true"), nil
}

func (truthyKind) Serialize(v any, lexeme string) string {
	s := "false"
	if v.(bool) {
		s = "true"
	}

	if lexeme != "" && unicode.IsUpper(rune(lexeme[0])) {
		return strings.ToUpper(s[:1]) + s[1:]
	}

	return s
}

// intKind handles decimal integers. Only int is accepted as a replacement;
// a float64 that happens to be integral does not pass Check.
type intKind struct{}

func (intKind) Check(v any) bool { _, ok := v.(int); return ok }

func (intKind) Parse(lexeme string) (any, error) {
	n, err := strconv.Atoi(lexeme)
	if err != nil {
		return nil, fmt.Errorf("integer lexeme %q: %w", lexeme, err)
	}

	return n, nil
}

func (intKind) Serialize(v any, _ string) string {
	return strconv.Itoa(v.(int))
}

// floatKind handles real numbers. With dexp set it additionally accepts the
// Fortran double-precision exponent markers D and d when parsing; in both
// configurations Serialize reuses whichever exponent marker the old lexeme
// carried.
type floatKind struct {
	dexp bool
}

func (floatKind) Check(v any) bool { _, ok := v.(float64); return ok }

func (k floatKind) Parse(lexeme string) (any, error) {
	s := lexeme
	if k.dexp {
		s = strings.NewReplacer("D", "E", "d", "e").Replace(s)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("real lexeme %q: %w", lexeme, err)
	}

	return f, nil
}

func (floatKind) Serialize(v any, lexeme string) string {
	return serializeFloat(v.(float64), lexeme)
}

// complexKind handles complex literals written "(re, im)". The parentheses,
// the separating comma, and any whitespace around the two parts survive
// serialization unchanged; only the numeric parts themselves are rewritten.
type complexKind struct {
	dexp bool
}

func (complexKind) Check(v any) bool { _, ok := v.(complex128); return ok }

func (k complexKind) Parse(lexeme string) (any, error) {
	re, im, err := splitComplex(lexeme)
	if err != nil {
		return nil, err
	}

	fre, err := floatKind{dexp: k.dexp}.Parse(strings.TrimSpace(re))
	if err != nil {
		return nil, err
	}

	fim, err := floatKind{dexp: k.dexp}.Parse(strings.TrimSpace(im))
	if err != nil {
		return nil, err
	}

	return complex(fre.(float64), fim.(float64)), nil
}

func (complexKind) Serialize(v any, lexeme string) string {
	c := v.(complex128)

	re, im, err := splitComplex(lexeme)
	if err != nil {
		// No usable notation to preserve.
		return "(" + FormatFloat(real(c)) + ", " + FormatFloat(imag(c)) + ")"
	}

	return "(" + respace(re, serializeFloat(real(c), re)) +
		"," + respace(im, serializeFloat(imag(c), im)) + ")"
}

// splitComplex separates the lexeme "(re, im)" into its two raw parts,
// whitespace included.
func splitComplex(lexeme string) (re, im string, err error) {
	body, ok := strings.CutPrefix(lexeme, "(")
	if !ok {
		return "", "", fmt.Errorf("complex lexeme %q: missing opening parenthesis", lexeme)
	}

	body, ok = strings.CutSuffix(body, ")")
	if !ok {
		return "", "", fmt.Errorf("complex lexeme %q: missing closing parenthesis", lexeme)
	}

	re, im, ok = strings.Cut(body, ",")
	if !ok {
		return "", "", fmt.Errorf("complex lexeme %q: missing component separator", lexeme)
	}

	return re, im, nil
}

// identifierKind handles bareword values such as unquoted enumerations and
// tokens like ".log" or "1:10:19" that the grammar could not classify more
// precisely. Values stay plain strings.
type identifierKind struct{}

func (identifierKind) Check(v any) bool {
	s, ok := v.(string)

	return ok && s != "" && !strings.ContainsAny(s, " \t\r\n")
}

func (identifierKind) Parse(lexeme string) (any, error) {
	return lexeme, nil
}

func (identifierKind) Serialize(v any, _ string) string {
	return v.(string)
}

// stringKind handles quoted strings. The quote character of the old lexeme
// is reused so single-quoted text stays single-quoted.
type stringKind struct{}

func (stringKind) Check(v any) bool { _, ok := v.(string); return ok }

func (stringKind) Parse(lexeme string) (any, error) {
	if len(lexeme) < 2 {
		return nil, fmt.Errorf("string lexeme %q: missing quotes", lexeme)
	}

	return lexeme[1 : len(lexeme)-1], nil
}

func (stringKind) Serialize(v any, lexeme string) string {
	quote := byte('\'')
	if lexeme != "" {
		quote = lexeme[0]
	}

	return string(quote) + v.(string) + string(quote)
}

// pathKind handles filesystem paths. Paths use the distinct type [Path] so
// that Check can tell them apart from ordinary strings.
type pathKind struct{}

func (pathKind) Check(v any) bool { _, ok := v.(Path); return ok }

func (pathKind) Parse(lexeme string) (any, error) {
	return Path(lexeme), nil
}

func (pathKind) Serialize(v any, _ string) string {
	return string(v.(Path))
}

// wordKind handles unquoted single-word values such as "10GB" or "01:00:00".
type wordKind struct{}

func (wordKind) Check(v any) bool {
	s, ok := v.(string)

	return ok && s != "" && !strings.ContainsAny(s, " \t\r\n")
}

func (wordKind) Parse(lexeme string) (any, error) {
	return lexeme, nil
}

func (wordKind) Serialize(v any, _ string) string {
	return v.(string)
}
