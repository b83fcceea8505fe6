// Package gha speaks the GitHub Actions runner protocol: action inputs, step
// outputs, log groups and workflow commands.
package gha

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ConsoleHandler writes human readable lines:
//
//	[15:04:05] [locator/WARN] Suspicious pastebin.com link url=...
//
// The "component" attribute names the logger instead of being listed.
type ConsoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Leveler
	component string
	state     attrState
	colors    map[slog.Level]*color.Color
	now       func() time.Time
}

// IsTerminal reports whether w is a terminal that can show colors.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewConsoleHandler colors the level when useColor is set.
func NewConsoleHandler(w io.Writer, level slog.Leveler, useColor bool) *ConsoleHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	colors := map[slog.Level]*color.Color{
		slog.LevelDebug: color.New(color.FgCyan),
		slog.LevelInfo:  color.New(color.FgGreen),
		slog.LevelWarn:  color.New(color.FgYellow, color.Bold),
		slog.LevelError: color.New(color.FgRed, color.Bold),
	}
	for _, c := range colors {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return &ConsoleHandler{
		mu:        &sync.Mutex{},
		w:         w,
		level:     level,
		component: "root",
		colors:    colors,
		now:       time.Now,
	}
}

func (h *ConsoleHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *ConsoleHandler) levelColor(l slog.Level) *color.Color {
	switch {
	case l >= slog.LevelError:
		return h.colors[slog.LevelError]
	case l >= slog.LevelWarn:
		return h.colors[slog.LevelWarn]
	case l >= slog.LevelInfo:
		return h.colors[slog.LevelInfo]
	default:
		return h.colors[slog.LevelDebug]
	}
}

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = h.now()
	}

	var b strings.Builder
	b.WriteString("[" + ts.Format(time.TimeOnly) + "] [")
	b.WriteString(h.component + "/")
	b.WriteString(h.levelColor(r.Level).Sprint(r.Level.String()))
	b.WriteString("] ")
	b.WriteString(r.Message)
	for _, a := range h.state.record(r) {
		b.WriteString(" " + a)
	}
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	rest := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		if a.Key == "component" && h.state.prefix == "" {
			c.component = a.Value.String()
			continue
		}
		rest = append(rest, a)
	}
	c.state = h.state.withAttrs(rest)
	return &c
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.state = h.state.withGroup(name)
	return &c
}
