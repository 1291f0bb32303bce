package value

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat renders f the way the documents in this corpus write reals:
// fixed-point with at least one fractional digit for mid-range magnitudes,
// scientific notation below 1e-4 and at or above 1e16.
func FormatFloat(f float64) string {
	if abs := math.Abs(f); f != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// serializeFloat renders f in the notation of the lexeme it replaces. A
// lexeme written in scientific notation stays scientific, keeping whichever
// of D, d, E, or e it used as the exponent marker; anything else formats
// like [FormatFloat].
func serializeFloat(f float64, lexeme string) string {
	for _, r := range lexeme {
		switch r {
		case 'D', 'd', 'E', 'e':
			return strings.ReplaceAll(strconv.FormatFloat(f, 'e', -1, 64), "e", string(r))
		}
	}

	return FormatFloat(f)
}

// respace wraps s in the leading and trailing whitespace of part.
func respace(part, s string) string {
	lead := part[:len(part)-len(strings.TrimLeft(part, " \t"))]
	trail := part[len(strings.TrimRight(part, " \t")):]

	return lead + s + trail
}
