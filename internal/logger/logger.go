package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// New returns a JSON logger for production and a colored text logger otherwise.
func New(out io.Writer, env, level string) *slog.Logger {
	lvl := ParseLevel(level)
	if env == "production" {
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl}))
	}
	return slog.New(NewHandler(out, lvl))
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Err wraps an error into a slog attribute under the "err" key.
func Err(err error) slog.Attr {
	return slog.Any("err", err)
}

// Handler is a compact colored slog.Handler for local development.
type Handler struct {
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string

	mu  *sync.Mutex
	out io.Writer
}

func NewHandler(out io.Writer, level slog.Leveler) *Handler {
	return &Handler{out: out, level: level, mu: &sync.Mutex{}}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var bf bytes.Buffer

	if !r.Time.IsZero() {
		bf.WriteString(color.New(color.Faint).Sprint(r.Time.Format(time.DateTime)))
		bf.WriteString(" ")
	}

	switch {
	case r.Level >= slog.LevelError:
		bf.WriteString(color.New(color.BgRed, color.FgHiWhite).Sprint("ERROR"))
	case r.Level >= slog.LevelWarn:
		bf.WriteString(color.New(color.BgYellow, color.FgHiWhite).Sprint("WARN "))
	case r.Level >= slog.LevelInfo:
		bf.WriteString(color.New(color.BgGreen, color.FgHiWhite).Sprint("INFO "))
	default:
		bf.WriteString(color.New(color.BgCyan, color.FgHiWhite).Sprint("DEBUG"))
	}
	bf.WriteString(" ")
	bf.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&bf, "", a)
	}
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&bf, prefix, a)
		return true
	})
	bf.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(bf.Bytes())
	return err
}

// writeAttr resolves a and writes it as key=value, flattening groups into
// dotted keys. Empty attrs are dropped.
func writeAttr(bf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(bf, key, ga)
		}
		return
	}

	c := color.New(color.FgCyan)
	if strings.Contains(a.Key, "err") {
		c = color.New(color.FgRed)
	}
	fmt.Fprintf(bf, " %s%s", c.Sprintf("%s=", key), a.Value.String())
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		if len(h.groups) > 0 {
			a = slog.Group(strings.Join(h.groups, "."), a)
		}
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(append([]string{}, h.groups...), name)
	return &h2
}
