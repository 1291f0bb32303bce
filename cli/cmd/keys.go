package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/confit/config"
)

// Keys lists the keys of a file in source order, descending into nested
// blocks. Block members print as BLOCK.MEMBER paths.
type Keys struct {
	YAML  bool   `help:"Emit the listing as YAML"`
	Where string `help:"Filter keys with a boolean expression over {key, kind, depth}" placeholder:"EXPR"`

	File string `arg:"" help:"Configuration file or '-' for stdin"`
}

// keyInfo is one row of the listing.
type keyInfo struct {
	Key   string `yaml:"key"`
	Kind  string `yaml:"kind"`
	Depth int    `yaml:"depth"`
}

// Run executes the keys command.
func (k *Keys) Run(ctx context.Context) error {
	doc, _, err := loadDocument(ctx, k.File)
	if err != nil {
		return err
	}

	infos := collectKeys(doc, "", 0)

	if k.Where != "" {
		infos, err = filterKeys(infos, k.Where)
		if err != nil {
			return err
		}
	}

	w := stdout(ctx)

	if k.YAML {
		out, err := yaml.Marshal(infos)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(out)

		return err
	}

	for _, info := range infos {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", info.Key, info.Kind); err != nil {
			return err
		}
	}

	return nil
}

// collectKeys walks the document in source order, recursing into blocks.
func collectKeys(doc *config.Document, prefix string, depth int) []keyInfo {
	var infos []keyInfo

	for key := range doc.Keys() {
		v, err := doc.Get(key)
		if err != nil {
			continue
		}

		name := key
		if prefix != "" {
			name = prefix + "." + key
		}

		infos = append(infos, keyInfo{Key: name, Kind: kindOf(v), Depth: depth})

		if nested, ok := v.(*config.Document); ok {
			infos = append(infos, collectKeys(nested, name, depth+1)...)
		}
	}

	return infos
}

// filterKeys keeps the rows satisfying the predicate expression.
func filterKeys(infos []keyInfo, predicate string) ([]keyInfo, error) {
	env := func(info keyInfo) map[string]any {
		return map[string]any{
			"key":   info.Key,
			"kind":  info.Kind,
			"depth": info.Depth,
		}
	}

	program, err := expr.Compile(
		predicate,
		expr.Env(env(keyInfo{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, ErrBadValue.Wrap(err).With(slog.String("predicate", predicate))
	}

	var keep []keyInfo

	for _, info := range infos {
		result, err := vm.Run(program, env(info))
		if err != nil {
			return nil, ErrBadValue.Wrap(err).With(slog.String("predicate", predicate))
		}

		if ok, isBool := result.(bool); isBool && ok {
			keep = append(keep, info)
		}
	}

	return keep, nil
}
