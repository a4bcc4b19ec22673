package logger

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/viewc/internal/ui/output"
	"go.trai.ch/viewc/internal/ui/style"
)

// PrettyHandler is a slog.Handler writing one colored line per record, with
// attributes rendered the way viewc reports print them.
type PrettyHandler struct {
	out    *termenv.Output
	level  slog.Leveler
	fields []string
	prefix string
}

// NewPrettyHandler creates a new PrettyHandler writing to w.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &PrettyHandler{out: output.New(w), level: level}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes the record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	glyph, color := levelStyle(r.Level)

	fields := append([]string(nil), h.fields...)
	r.Attrs(func(attr slog.Attr) bool {
		fields = appendAttr(fields, h.prefix, attr)
		return true
	})

	line := glyph + r.Message
	if len(fields) > 0 {
		line += " " + strings.Join(fields, " ")
	}

	_, err := h.out.WriteString(h.out.String(line).Foreground(color).String() + "\n")
	return err
}

// WithAttrs returns a Handler carrying attrs under the current group.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := append([]string(nil), h.fields...)
	for _, attr := range attrs {
		fields = appendAttr(fields, h.prefix, attr)
	}
	return &PrettyHandler{out: h.out, level: h.level, fields: fields, prefix: h.prefix}
}

// WithGroup returns a Handler nesting later attrs under name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &PrettyHandler{out: h.out, level: h.level, fields: h.fields, prefix: h.prefix + name + "."}
}

func levelStyle(level slog.Level) (string, termenv.Color) {
	switch {
	case level >= slog.LevelError:
		return style.Cross + " ", termenv.RGBColor(string(style.Red))
	case level >= slog.LevelWarn:
		return style.Warning + " ", termenv.RGBColor(string(style.Yellow))
	default:
		return "", termenv.RGBColor(string(style.Slate))
	}
}

// appendAttr renders attr as key=value, flattening groups into dotted keys.
// Empty attrs are dropped, as slog handlers are expected to do.
func appendAttr(fields []string, prefix string, attr slog.Attr) []string {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return fields
	}

	if attr.Value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			prefix += attr.Key + "."
		}
		for _, member := range attr.Value.Group() {
			fields = appendAttr(fields, prefix, member)
		}
		return fields
	}

	return append(fields, prefix+attr.Key+"="+formatValue(attr.Value))
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindDuration:
		return roundDuration(v.Duration()).String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = v.String()
		}
	default:
		s = v.String()
	}

	s = strings.TrimRight(s, "\n")
	if strings.Contains(s, "\n") {
		return strings.ReplaceAll(s, "\n", "\n  ")
	}
	if s == "" || strings.ContainsAny(s, " \t\"=") {
		return strconv.Quote(s)
	}
	return s
}

// roundDuration matches the precision of the watch and build reports.
func roundDuration(d time.Duration) time.Duration {
	if d >= time.Millisecond || d <= -time.Millisecond {
		return d.Round(time.Millisecond)
	}
	return d.Round(time.Microsecond)
}
