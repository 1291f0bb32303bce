// Package profile wires [github.com/pkg/profile] behind a build tag so
// runtime profiling costs nothing unless compiled in.
//
// Build with "-tags pprof" to enable the profiler. Without the tag, [Start]
// is a no-op, [Modes] reports nothing, and the binary carries no profiling
// code.
//
// A profiler is described by a [Config] and started once per process:
//
//	defer profile.Make(
//		profile.WithMode("cpu"),
//		profile.WithPath(dir),
//	).Start().Stop()
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`

// Config describes one profiler run.
type Config struct {
	mode  string
	path  string
	quiet bool
}

// Option transforms a profiler configuration.
type Option func(Config) Config

// Make returns a Config with the given options applied in order.
func Make(opts ...Option) Config {
	var c Config

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// Start initializes the profiler and returns a handle for stopping it.
//
// If the build tag pprof is unset, the mode is empty, or the mode is not
// supported, Start returns a no-op handle. Both Start and Stop are always
// safely callable.
func (c Config) Start() interface{ Stop() } {
	if c.mode == "" {
		return ignore{}
	}

	return start(c.mode, c.path, c.quiet)
}

// WithMode sets the profiler's mode.
func WithMode(mode string) Option {
	return func(c Config) Config {
		c.mode = mode

		return c
	}
}

// WithPath sets the profiler's output path.
func WithPath(path string) Option {
	return func(c Config) Config {
		c.path = path

		return c
	}
}

// WithQuiet sets the profiler's quiet flag.
func WithQuiet(quiet bool) Option {
	return func(c Config) Config {
		c.quiet = quiet

		return c
	}
}

type ignore struct{}

func (ignore) Stop() {}
