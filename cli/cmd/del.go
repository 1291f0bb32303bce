package cmd

import (
	"context"
)

// Del removes one key, statement and all, and prints the re-rendered file.
type Del struct {
	File string   `arg:"" help:"Configuration file or '-' for stdin"`
	Key  []string `arg:"" help:"Key, preceded by the names of any enclosing blocks"`
}

// Run executes the del command.
func (d *Del) Run(ctx context.Context) error {
	doc, f, err := loadDocument(ctx, d.File)
	if err != nil {
		return err
	}

	owner, key, err := resolveKey(doc, d.Key)
	if err != nil {
		return err
	}

	if err := owner.Delete(key); err != nil {
		return suggest(err, owner, key)
	}

	return f.write(stdout(ctx), doc)
}
