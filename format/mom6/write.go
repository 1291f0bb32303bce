package mom6

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/confit/config"
	"github.com/ardnew/confit/value"
)

// Add appends a parameter that does not yet exist to the end of the
// document, separated from the existing text by a blank line, and reparses
// so the new key is addressable. The input document is not modified.
func Add(doc *config.Document, key string, v any) (*config.Document, error) {
	if doc.Contains(key) {
		return nil, config.NewError("parameter already defined").
			With(slog.String("key", key))
	}

	text := doc.String() + "\n\n" + entry(key, v) + "\n"

	return Parse(text)
}

// Write renders an edited document back to w.
func Write(w io.Writer, doc *config.Document) error {
	_, err := io.WriteString(w, doc.String())

	return err
}

// WritePlain writes entries as a fresh parameter file, one "KEY = VALUE"
// line per entry in sorted key order. It regenerates text from values alone
// and is the counterpart of [Write] for documents that did not come from a
// parsed file.
func WritePlain(w io.Writer, entries map[string]any) error {
	for _, k := range slices.Sorted(maps.Keys(entries)) {
		if _, err := io.WriteString(w, entry(k, entries[k])+"\n"); err != nil {
			return err
		}
	}

	return nil
}

func entry(key string, v any) string {
	return key + " = " + formatValue(v)
}

// formatValue renders a typed value in MOM6 notation: True/False booleans,
// single-quoted strings, and comma-separated lists.
func formatValue(v any) string {
	switch have := v.(type) {
	case nil:
		return ""
	case bool:
		if have {
			return "True"
		}

		return "False"
	case int:
		return strconv.Itoa(have)
	case float64:
		return value.FormatFloat(have)
	case complex128:
		return "(" + value.FormatFloat(real(have)) + ", " + value.FormatFloat(imag(have)) + ")"
	case string:
		return "'" + have + "'"
	case value.Path:
		return "'" + string(have) + "'"
	case []any:
		parts := make([]string, len(have))
		for i, e := range have {
			parts[i] = formatValue(e)
		}

		return strings.Join(parts, ", ")
	case *config.List:
		return formatValue(have.Values())
	default:
		return fmt.Sprintf("%v", v)
	}
}
