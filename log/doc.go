// Package log provides a thin logging front-end over [log/slog].
//
// A [Logger] is built once with [Make] and functional options, then shared.
// Library packages in this module accept a Logger (or nothing) and never
// configure logging themselves; the CLI constructs the process logger from
// its flags and installs it with [Config].
//
// Three output formats are supported: "text" ([slog.TextHandler]), "json"
// ([slog.JSONHandler]), and "pretty" (a colorized single-line handler styled
// with lipgloss, intended for terminals).
package log
