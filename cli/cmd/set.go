package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/confit/config"
)

// Set replaces the value of one key and prints the re-rendered file. Only
// the rewritten lexemes differ from the input text.
type Set struct {
	Index int `default:"-1" help:"Replace a single element of a list value" short:"i"`

	File  string   `arg:"" help:"Configuration file or '-' for stdin"`
	Key   []string `arg:"" help:"Key, preceded by the names of any enclosing blocks"`
	Value string   `arg:"" help:"Replacement value (lists are comma-separated)"`
}

// Run executes the set command.
func (s *Set) Run(ctx context.Context) error {
	doc, f, err := loadDocument(ctx, s.File)
	if err != nil {
		return err
	}

	owner, key, err := resolveKey(doc, s.Key)
	if err != nil {
		return err
	}

	current, err := owner.Get(key)
	if err != nil {
		return suggest(err, owner, key)
	}

	if s.Index >= 0 {
		err = s.setElement(current, key)
	} else {
		var v any

		v, err = coerce(current, s.Value)
		if err == nil {
			err = owner.Set(key, v)
		}
	}

	if err != nil {
		return err
	}

	return f.write(stdout(ctx), doc)
}

// setElement rewrites one slot of a list value in place.
func (s *Set) setElement(current any, key string) error {
	list, ok := current.(*config.List)
	if !ok {
		return ErrBadValue.With(
			slog.String("key", key),
			slog.String("cause", "not a list"),
		)
	}

	if s.Index >= list.Len() {
		return ErrBadValue.With(
			slog.String("key", key),
			slog.Int("index", s.Index),
			slog.Int("len", list.Len()),
		)
	}

	v, err := coerce(list.At(s.Index), s.Value)
	if err != nil {
		return err
	}

	return list.Set(s.Index, v)
}
