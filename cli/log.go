package cli

import (
	"context"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/confit/log"
)

// logFormat configures the logger format as a side effect of parsing via
// encoding.TextUnmarshaler, so later parse diagnostics already use it.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the logger level as a side effect of parsing via
// encoding.TextUnmarshaler.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"debug,info,warn,error" help:"Set log level."`
	Format     logFormat `default:"pretty"  enum:"pretty,text,json"      help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                              help:"Set timestamp format."`
	Caller     bool      `default:"false"                                help:"Include caller information." negatable:""`
}

func (*logConfig) group() kong.Group {
	var group kong.Group

	group.Key = "log"
	group.Title = "Logging options"

	return group
}

func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
	)
}

// scan performs an early pass over command-line arguments to apply logger
// flags before kong begins parsing. The TextUnmarshaler types above catch
// --log-level and --log-format during normal parsing too; this pass only
// matters for diagnostics emitted while parsing the remaining flags.
func (f *logConfig) scan(args []string) {
	flagValue := func(i int) (string, bool) {
		arg := args[i]

		if eq := strings.IndexByte(arg, '='); eq >= 0 {
			return arg[eq+1:], true
		}

		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			return args[i+1], true
		}

		return "", false
	}

	for i := range args {
		name := args[i]
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name = name[:eq]
		}

		switch name {
		case "--log-level":
			if v, ok := flagValue(i); ok {
				_ = f.Level.UnmarshalText([]byte(v))
			}

		case "--log-format":
			if v, ok := flagValue(i); ok {
				_ = f.Format.UnmarshalText([]byte(v))
			}

		case "--log-caller":
			f.Caller = true

			log.Config(log.WithCaller(true))

		case "--no-log-caller":
			f.Caller = false

			log.Config(log.WithCaller(false))
		}
	}
}
