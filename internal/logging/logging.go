// Package logging wraps log/slog the way rcornwell-S370/util/logger wraps
// it: a small slog.Handler that formats records consistently and can be
// told to also mirror every record that passes the level filter to stderr.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Handler formats log records as "time level message attr=val ...".
type Handler struct {
	out     io.Writer
	h       slog.Handler
	mu      *sync.Mutex
	mirror  bool // always echo to stderr in addition to out
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{out: h.out, h: h.h.WithAttrs(attrs), mu: h.mu, mirror: h.mirror}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{out: h.out, h: h.h.WithGroup(name), mu: h.mu, mirror: h.mirror}
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	parts := []string{r.Time.Format("15:04:05.000"), r.Level.String() + ":", r.Message}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, a.String())
		return true
	})
	line := strings.Join(parts, " ") + "\n"

	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.out != nil {
		_, err = h.out.Write([]byte(line))
	}
	if h.mirror && h.out != os.Stderr {
		_, _ = os.Stderr.Write([]byte(line))
	}
	return err
}

// New builds a *slog.Logger at the given level writing to out. mirror, when
// true, duplicates every record to stderr as well (unless out already is
// stderr).
func New(out io.Writer, level slog.Level, mirror bool) *slog.Logger {
	h := &Handler{
		out: out,
		h:   slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}),
		mu:  &sync.Mutex{},
		mirror: mirror,
	}
	return slog.New(h)
}

// ParseLevel maps the debugger/CLI level vocabulary from SPEC_FULL.md §6
// (error|warn|info|debug|trace|off) onto slog levels. "trace" maps to a
// level below slog.LevelDebug since slog has no native trace tier; "off"
// maps to a level above any record this package emits.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "error":
		return slog.LevelError, true
	case "warn":
		return slog.LevelWarn, true
	case "info":
		return slog.LevelInfo, true
	case "debug":
		return slog.LevelDebug, true
	case "trace":
		return slog.LevelDebug - 4, true
	case "off":
		return slog.LevelError + 4, true
	default:
		return slog.LevelInfo, false
	}
}

// Discard returns a logger that drops every record, used as the default
// when a caller does not wire one in (e.g. unit tests).
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
