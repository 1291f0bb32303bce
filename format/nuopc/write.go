package nuopc

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ardnew/confit/config"
	"github.com/ardnew/confit/value"
)

// Entry is one top-level item of a regenerated run configuration. Value is
// a scalar, a []any of space-separated scalars, or a []Entry attribute
// block. Entries render in order.
type Entry struct {
	Key   string
	Value any
}

// Write copies the document, byte for byte, to w.
func Write(w io.Writer, doc *config.Document) error {
	_, err := io.WriteString(w, doc.String())

	return err
}

// WritePlain renders entries as a fresh run configuration, discarding any
// comments or spacing of the file they came from. Floats render in Fortran
// double notation ("%.6E" with a D exponent) and bools as .true./.false.
func WritePlain(w io.Writer, entries []Entry) error {
	var sb strings.Builder

	for _, e := range entries {
		switch v := e.Value.(type) {
		case []Entry:
			sb.WriteString(e.Key)
			sb.WriteString("::\n")

			for _, attr := range v {
				sb.WriteString("  ")
				sb.WriteString(attr.Key)
				sb.WriteString(" = ")
				sb.WriteString(formatValue(attr.Value))
				sb.WriteByte('\n')
			}

			sb.WriteString("::\n\n")

		default:
			sb.WriteString(e.Key)
			sb.WriteString(": ")
			sb.WriteString(formatValue(e.Value))
			sb.WriteByte('\n')
		}
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return ".true."
		}

		return ".false."
	case int:
		return strconv.Itoa(v)
	case float64:
		return formatDouble(v)
	case complex128:
		return "(" + formatDouble(real(v)) + ", " + formatDouble(imag(v)) + ")"
	case string:
		return v
	case value.Path:
		return string(v)
	case []any:
		words := make([]string, len(v))
		for i, e := range v {
			words[i] = formatValue(e)
		}

		return strings.Join(words, " ")
	case *config.List:
		return formatValue(v.Values())
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatDouble renders f the way Fortran namelist tooling writes doubles,
// e.g. -1.000000D-08.
func formatDouble(f float64) string {
	return strings.Replace(strconv.FormatFloat(f, 'E', 6, 64), "E", "D", 1)
}
