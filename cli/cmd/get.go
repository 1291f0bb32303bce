package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ardnew/confit/config"
)

// Get prints the value of one key.
type Get struct {
	Index int `default:"-1" help:"Print a single element of a list value" short:"i"`

	File string   `arg:"" help:"Configuration file or '-' for stdin"`
	Key  []string `arg:"" help:"Key, preceded by the names of any enclosing blocks"`
}

// Run executes the get command.
func (g *Get) Run(ctx context.Context) error {
	doc, _, err := loadDocument(ctx, g.File)
	if err != nil {
		return err
	}

	owner, key, err := resolveKey(doc, g.Key)
	if err != nil {
		return err
	}

	v, err := owner.Get(key)
	if err != nil {
		return suggest(err, owner, key)
	}

	if g.Index >= 0 {
		list, ok := v.(*config.List)
		if !ok {
			return ErrBadValue.With(
				slog.String("key", key),
				slog.String("cause", "not a list"),
			)
		}

		if g.Index >= list.Len() {
			return ErrBadValue.With(
				slog.String("key", key),
				slog.String("index", strconv.Itoa(g.Index)),
			)
		}

		v = list.At(g.Index)
	}

	_, err = fmt.Fprintln(stdout(ctx), display(v))

	return err
}
