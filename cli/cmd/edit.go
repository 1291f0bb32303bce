package cmd

import (
	"context"
	"strings"

	"github.com/ardnew/confit/cli/cmd/edit"
	"github.com/ardnew/confit/config"
)

// Edit opens a file in the interactive editor. Quitting normally prints
// the (possibly edited) document to stdout; aborting prints nothing.
type Edit struct {
	File string `arg:"" help:"Configuration file or '-' for stdin"`
}

// Run executes the edit command.
func (e *Edit) Run(ctx context.Context) error {
	doc, _, err := loadDocument(ctx, e.File)
	if err != nil {
		return err
	}

	session := edit.Session{
		Entries: func() []edit.Entry { return documentEntries(doc) },
		Apply: func(key, raw string) error {
			owner, last, err := resolveKey(doc, strings.Split(key, "."))
			if err != nil {
				return err
			}

			current, err := owner.Get(last)
			if err != nil {
				return err
			}

			v, err := coerce(current, raw)
			if err != nil {
				return err
			}

			return owner.Set(last, v)
		},
		Render: func() string { return doc.String() + "\n" },
	}

	return edit.Run(ctx, session, stdout(ctx))
}

// documentEntries flattens the document into editor rows, one per key,
// nested blocks included.
func documentEntries(doc *config.Document) []edit.Entry {
	var entries []edit.Entry

	for _, info := range collectKeys(doc, "", 0) {
		owner, key, err := resolveKey(doc, strings.Split(info.Key, "."))
		if err != nil {
			continue
		}

		v, err := owner.Get(key)
		if err != nil {
			continue
		}

		text := display(v)
		if info.Kind == "block" {
			text = ""
		}

		entries = append(entries, edit.Entry{
			Key:   info.Key,
			Value: text,
			Kind:  info.Kind,
		})
	}

	return entries
}
