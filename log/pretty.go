package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles for the pretty handler.
var (
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	msgStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	groupStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)

	levelStyle = map[slog.Level]lipgloss.Style{
		slog.LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		slog.LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		slog.LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		slog.LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

// prettyHandler renders records as single colorized lines:
//
//	15:04:05 INFO  message key=value group.key=value
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	groups []string
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts: *opts,
		mu:   &sync.Mutex{},
		w:    w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() {
		// Route the time attr through ReplaceAttr so the handler honors
		// WithTimeLayout the same way the stdlib handlers do.
		ts := slog.Time(slog.TimeKey, r.Time)
		if h.opts.ReplaceAttr != nil {
			ts = h.opts.ReplaceAttr(nil, ts)
		}

		if !ts.Equal(slog.Attr{}) {
			buf.WriteString(timeStyle.Render(ts.Value.String()))
			buf.WriteByte(' ')
		}
	}

	buf.WriteString(levelBadge(r.Level))
	buf.WriteByte(' ')

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			buf.WriteString(keyStyle.Render(
				fmt.Sprintf("%s:%d", src.File, src.Line),
			))
			buf.WriteByte(' ')
		}
	}

	buf.WriteString(msgStyle.Render(r.Message))

	prefix := strings.Join(h.groups, ".")

	for _, a := range h.attrs {
		h.writeAttr(buf, prefix, a)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, prefix, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)

	return &clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(h.groups[:len(h.groups):len(h.groups)], name)

	return &clone
}

func (h *prettyHandler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		sub := prefix
		if a.Key != "" {
			if sub != "" {
				sub += "."
			}

			sub += a.Key
		}

		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, sub, ga)
		}

		return
	}

	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if prefix != "" {
		key = groupStyle.Render(prefix+".") + key
	}

	buf.WriteByte(' ')
	buf.WriteString(keyStyle.Render(key + "="))
	buf.WriteString(renderValue(a.Value))
}

// levelBadge renders a fixed-width colored level label.
func levelBadge(level slog.Level) string {
	label := level.String()

	style, ok := levelStyle[level]
	if !ok {
		style = levelStyle[slog.LevelInfo]
	}

	if len(label) < 5 {
		label += strings.Repeat(" ", 5-len(label))
	}

	return style.Render(label)
}

// renderValue formats a value without the quoting the text handler applies,
// quoting only strings containing spaces.
func renderValue(v slog.Value) string {
	s := v.String()

	if v.Kind() == slog.KindString && strings.ContainsAny(s, " \t") {
		return strconv.Quote(s)
	}

	return s
}
