// Package cmd implements the confit subcommands. Each command is a kong
// struct with a Run method; shared plumbing (document loading, key paths,
// value coercion) lives here.
package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/confit/config"
	"github.com/ardnew/confit/log"
)

type (
	contextKey struct{}
	formatKey  struct{}
)

// WithContext returns a context carrying the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

// WithFormat returns a context carrying the --format flag value.
func WithFormat(ctx context.Context, format string) context.Context {
	return context.WithValue(ctx, formatKey{}, format)
}

func formatFrom(ctx context.Context) string {
	f, _ := ctx.Value(formatKey{}).(string)

	return f
}

// stdout returns the writer commands print results to. The kong.Context
// carries it so tests can capture output.
func stdout(ctx context.Context) io.Writer {
	if ktx, ok := ctx.Value(contextKey{}).(*kong.Context); ok && ktx != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stdinSource is the file argument that selects standard input.
const stdinSource = "-"

// readSource returns the text of the named file, or of stdin for "-".
func readSource(path string) (string, error) {
	if path == stdinSource {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", ErrReadSource.Wrap(err)
		}

		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", ErrReadSource.Wrap(err)
	}

	return string(data), nil
}

// loadDocument reads and parses the named file, picking the grammar from
// the --format flag or, failing that, the file name.
func loadDocument(ctx context.Context, path string) (*config.Document, format, error) {
	f, err := detectFormat(formatFrom(ctx), path)
	if err != nil {
		return nil, format{}, err
	}

	text, err := readSource(path)
	if err != nil {
		return nil, format{}, err
	}

	doc, err := f.parse(text)
	if err != nil {
		return nil, format{}, err
	}

	log.DebugContext(ctx, "document loaded",
		slog.String("file", path),
		slog.String("format", f.name),
		slog.Int("keys", doc.Len()),
	)

	return doc, f, nil
}

// resolveKey descends nested blocks for all but the last segment of path
// and returns the owning document together with the final key. A miss on a
// block segment or a non-block intermediate value is a key error on that
// segment.
func resolveKey(doc *config.Document, path []string) (*config.Document, string, error) {
	if len(path) == 0 {
		return nil, "", config.ErrKeyNotFound
	}

	for _, seg := range path[:len(path)-1] {
		v, err := doc.Get(seg)
		if err != nil {
			return nil, "", suggest(err, doc, seg)
		}

		nested, ok := v.(*config.Document)
		if !ok {
			return nil, "", config.ErrKeyNotFound.With(
				slog.String("key", seg),
				slog.String("cause", "not a block"),
			)
		}

		doc = nested
	}

	return doc, path[len(path)-1], nil
}

// suggest decorates a key-not-found error with close key names, so typos
// come back with a hint instead of a bare failure.
func suggest(err error, doc *config.Document, key string) error {
	if !errors.Is(err, config.ErrKeyNotFound) {
		return err
	}

	var keys []string
	for k := range doc.Keys() {
		keys = append(keys, k)
	}

	matches := fuzzy.Find(strings.ToUpper(key), keys)
	if len(matches) == 0 {
		matches = fuzzy.Find(key, keys)
	}

	sort.Stable(matches)

	const maxSuggestions = 3

	var names []string
	for _, m := range matches {
		names = append(names, m.Str)
		if len(names) == maxSuggestions {
			break
		}
	}

	if len(names) == 0 {
		return err
	}

	var ee *config.Error
	if errors.As(err, &ee) {
		return ee.With(slog.String("did_you_mean", strings.Join(names, ", ")))
	}

	return err
}
