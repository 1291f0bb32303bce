// Package cli implements the confit command-line interface: flag and
// argument declarations, logging and profiling setup, and the mapping from
// file names to format grammars. All document work happens in the command
// packages; this package only wires them together.
package cli

import (
	"context"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/ardnew/confit/cli/cmd"
	"github.com/ardnew/confit/log"
)

const (
	appName        = "confit"
	appDescription = "Edit model configuration files without disturbing " +
		"a byte you didn't touch."
)

// CLI is the top-level command-line interface for confit.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Format string `enum:",mom6,nuopc,payu" help:"Input file format (default: guess from file name)" short:"f"`

	Get    cmd.Get    `cmd:"" help:"Print the value of a key"`
	Set    cmd.Set    `cmd:"" help:"Replace the value of a key and print the result"`
	Del    cmd.Del    `cmd:"" help:"Delete a key and print the result"`
	Keys   cmd.Keys   `cmd:"" help:"List the keys of a file"`
	Fmt    cmd.Fmt    `cmd:"" help:"Round-trip a file through the parser"`
	Layout cmd.Layout `cmd:"" help:"Enumerate processor layouts"`
	Edit   cmd.Edit   `cmd:"" help:"Edit a file interactively"`
}

// Run executes the confit CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags so parse errors are already reported with
	// the requested format and level regardless of flag position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(appName),
		kong.Description(appDescription),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		cli.Pprof.vars(),
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithFormat(ctx, cli.Format)

	cli.Log.start(ctx)

	// No-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	err = ktx.Run(ctx, &cli)
	if err != nil {
		log.DebugContext(ctx, "command failed",
			slog.String("command", ktx.Command()),
		)
	}

	return err
}
