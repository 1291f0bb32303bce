package cmd

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/confit/config"
	"github.com/ardnew/confit/value"
)

// coerce reads a command-line argument as a value of the same kind the key
// currently holds, so Document.Set sees a properly typed replacement.
func coerce(current any, arg string) (any, error) {
	switch cur := current.(type) {
	case nil:
		if arg == "" || strings.EqualFold(arg, "null") {
			return nil, nil
		}

		return nil, ErrBadValue.With(
			slog.String("value", arg),
			slog.String("want", "null"),
		)

	case bool:
		return parseBool(arg)

	case int:
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, ErrBadValue.Wrap(err).With(slog.String("want", "integer"))
		}

		return n, nil

	case float64:
		f, err := strconv.ParseFloat(normalizeExponent(arg), 64)
		if err != nil {
			return nil, ErrBadValue.Wrap(err).With(slog.String("want", "float"))
		}

		return f, nil

	case complex128:
		return parseComplex(arg)

	case value.Path:
		return value.Path(strings.Trim(arg, `"'`)), nil

	case string:
		return strings.Trim(arg, `"'`), nil

	case *config.List:
		return coerceList(cur, arg)

	case *config.Document:
		// Set rejects block reassignment; pass anything through and let
		// the document report the structural error.
		return arg, nil

	default:
		return nil, ErrBadValue.With(slog.String("value", arg))
	}
}

// coerceList splits arg on commas and coerces each element to the kind of
// the list element it replaces. Extra elements borrow the first element's
// kind so a length mismatch still reaches the document layer, which owns
// that error.
func coerceList(cur *config.List, arg string) ([]any, error) {
	parts := strings.Split(arg, ",")

	items := make([]any, len(parts))

	for i, part := range parts {
		model := cur.At(0)
		if i < cur.Len() {
			model = cur.At(i)
		}

		v, err := coerce(model, strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}

		items[i] = v
	}

	return items, nil
}

// parseBool accepts the CLI spellings of the boolean notations the
// grammars produce: Fortran logicals, Python-style True/False, and plain
// true/false.
func parseBool(arg string) (bool, error) {
	switch strings.ToLower(strings.Trim(arg, ".")) {
	case "true", "t", "1":
		return true, nil
	case "false", "f", "0":
		return false, nil
	}

	return false, ErrBadValue.With(
		slog.String("value", arg),
		slog.String("want", "boolean"),
	)
}

// parseComplex reads either Go notation ("1+2i") or the Fortran
// parenthesized pair ("(1.0, 2.0)").
func parseComplex(arg string) (complex128, error) {
	s := strings.TrimSpace(arg)

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && strings.Contains(s, ",") {
		body := s[1 : len(s)-1]

		re, im, ok := strings.Cut(body, ",")
		if ok {
			r, errRe := strconv.ParseFloat(normalizeExponent(strings.TrimSpace(re)), 64)
			i, errIm := strconv.ParseFloat(normalizeExponent(strings.TrimSpace(im)), 64)

			if errRe == nil && errIm == nil {
				return complex(r, i), nil
			}
		}
	}

	c, err := strconv.ParseComplex(s, 128)
	if err != nil {
		return 0, ErrBadValue.Wrap(err).With(slog.String("want", "complex"))
	}

	return c, nil
}

// normalizeExponent maps Fortran D exponent markers onto E so strconv can
// read doubles as written in namelist files.
func normalizeExponent(s string) string {
	if i := strings.IndexAny(s, "Dd"); i >= 0 {
		return s[:i] + "e" + s[i+1:]
	}

	return s
}

// display renders a value the way the get and keys commands print it.
func display(v any) string {
	switch have := v.(type) {
	case nil:
		return "null"

	case bool:
		return strconv.FormatBool(have)

	case int:
		return strconv.Itoa(have)

	case float64:
		return value.FormatFloat(have)

	case complex128:
		return "(" + value.FormatFloat(real(have)) + ", " + value.FormatFloat(imag(have)) + ")"

	case value.Path:
		return string(have)

	case string:
		return have

	case *config.List:
		parts := make([]string, have.Len())
		for i, e := range have.Values() {
			parts[i] = display(e)
		}

		return strings.Join(parts, ", ")

	case *config.Document:
		return have.String()

	default:
		return ""
	}
}

// kindOf names the kind of a stored value for key listings and filters.
func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case int:
		return "integer"
	case float64:
		return "float"
	case complex128:
		return "complex"
	case value.Path:
		return "path"
	case string:
		return "string"
	case *config.List:
		return "list"
	case *config.Document:
		return "block"
	default:
		return "unknown"
	}
}
