// Package gha speaks the GitHub Actions runner protocol: action inputs, step
// outputs, log groups and workflow commands.
package gha

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

// attrState carries what WithAttrs and WithGroup accumulate. It is shared by
// both handlers in this package.
type attrState struct {
	prefix string
	attrs  []string
}

func (s attrState) withAttrs(as []slog.Attr) attrState {
	out := attrState{prefix: s.prefix, attrs: append([]string(nil), s.attrs...)}
	for _, a := range as {
		out.attrs = appendAttr(out.attrs, s.prefix, a)
	}
	return out
}

func (s attrState) withGroup(name string) attrState {
	if name == "" {
		return s
	}
	return attrState{prefix: s.prefix + name + ".", attrs: s.attrs}
}

func (s attrState) record(r slog.Record) []string {
	attrs := append([]string(nil), s.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = appendAttr(attrs, s.prefix, a)
		return true
	})
	return attrs
}

func appendAttr(dst []string, prefix string, a slog.Attr) []string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, g := range a.Value.Group() {
			dst = appendAttr(dst, p, g)
		}
		return dst
	}
	return append(dst, prefix+a.Key+"="+formatValue(a.Value))
}

func formatValue(v slog.Value) string {
	s := v.String()
	if s == "" || strings.ContainsAny(s, " \t\r\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// AnnotationHandler turns log records into workflow commands so they show up
// as annotations on the run: errors and warnings as such, info as notices.
type AnnotationHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	level slog.Leveler
	state attrState
}

func NewAnnotationHandler(w io.Writer, level slog.Leveler) *AnnotationHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &AnnotationHandler{mu: &sync.Mutex{}, w: w, level: level}
}

func (h *AnnotationHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func commandFor(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "error"
	case l >= slog.LevelWarn:
		return "warning"
	case l >= slog.LevelInfo:
		return "notice"
	default:
		return "debug"
	}
}

func (h *AnnotationHandler) Handle(_ context.Context, r slog.Record) error {
	msg := r.Message
	if attrs := h.state.record(r); len(attrs) > 0 {
		msg += " " + strings.Join(attrs, " ")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return Command(h.w, commandFor(r.Level), msg)
}

func (h *AnnotationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.state = h.state.withAttrs(attrs)
	return &c
}

func (h *AnnotationHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.state = h.state.withGroup(name)
	return &c
}

// Fanout sends every record to each handler that is enabled for its level.
type Fanout []slog.Handler

func (f Fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f Fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f Fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(Fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f Fanout) WithGroup(name string) slog.Handler {
	out := make(Fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
