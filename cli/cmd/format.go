package cmd

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ardnew/confit/config"
	"github.com/ardnew/confit/format/mom6"
	"github.com/ardnew/confit/format/nuopc"
	"github.com/ardnew/confit/format/payu"
)

// format binds a grammar name to its parse and write entry points.
type format struct {
	name  string
	parse func(text string) (*config.Document, error)
	write func(w io.Writer, doc *config.Document) error
}

var formats = map[string]format{
	"mom6":  {name: "mom6", parse: mom6.Parse, write: mom6.Write},
	"nuopc": {name: "nuopc", parse: nuopc.Parse, write: nuopc.Write},
	"payu":  {name: "payu", parse: payu.Parse, write: payu.Write},
}

// detectFormat resolves the grammar for a file. An explicit --format value
// wins; otherwise the file name decides: MOM_input/MOM_override and *.MOM6
// parse as mom6, nuopc_runconfig as nuopc, and *.yaml/*.yml as payu.
func detectFormat(explicit, path string) (format, error) {
	if explicit != "" {
		f, ok := formats[explicit]
		if !ok {
			return format{}, ErrUnknownFormat.With(slog.String("format", explicit))
		}

		return f, nil
	}

	base := strings.ToLower(filepath.Base(path))

	switch {
	case strings.HasPrefix(base, "mom_input"),
		strings.HasPrefix(base, "mom_override"),
		strings.HasSuffix(base, ".mom6"):
		return formats["mom6"], nil

	case strings.HasPrefix(base, "nuopc_runconfig"),
		strings.HasSuffix(base, ".runconfig"):
		return formats["nuopc"], nil

	case strings.HasSuffix(base, ".yaml"), strings.HasSuffix(base, ".yml"):
		return formats["payu"], nil
	}

	return format{}, ErrUnknownFormat.With(slog.String("file", path))
}
