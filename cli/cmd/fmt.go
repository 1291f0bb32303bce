package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/confit/config"
	"github.com/ardnew/confit/format/mom6"
)

// Fmt round-trips a file through its grammar and prints the result. The
// output is byte-identical to the input apart from trailing-newline
// normalization, which makes the command a cheap conformance check.
type Fmt struct {
	Sorted bool `help:"Regenerate as sorted KEY = VALUE lines, discarding comments (mom6 only)"`

	File string `arg:"" help:"Configuration file or '-' for stdin"`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) error {
	doc, fm, err := loadDocument(ctx, f.File)
	if err != nil {
		return err
	}

	if !f.Sorted {
		return fm.write(stdout(ctx), doc)
	}

	if fm.name != "mom6" {
		return ErrBadSelection.With(
			slog.String("format", fm.name),
			slog.String("cause", "--sorted requires mom6"),
		)
	}

	return mom6.WritePlain(stdout(ctx), flatten(doc, ""))
}

// flatten turns nested blocks into BLOCK%KEY entries so the plain writer
// sees one flat namespace.
func flatten(doc *config.Document, prefix string) map[string]any {
	entries := make(map[string]any, doc.Len())

	for key := range doc.Keys() {
		v, err := doc.Get(key)
		if err != nil {
			continue
		}

		if nested, ok := v.(*config.Document); ok {
			for k, nv := range flatten(nested, prefix+key+"%") {
				entries[k] = nv
			}

			continue
		}

		entries[prefix+key] = v
	}

	return entries
}
