// Package testutil provides test utilities for structured logging.
package testutil

import (
	"context"
	"log/slog"
	"sync"
	"testing"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// Record is a captured log entry.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// Capture is a slog.Handler that keeps every record at or above Level.
type Capture struct {
	Level slog.Level

	mu      sync.Mutex
	records []Record
}

// NewCaptureLogger returns a logger backed by a Capture handler.
func NewCaptureLogger(level slog.Level) (*slog.Logger, *Capture) {
	c := &Capture{Level: level}
	return slog.New(c), c
}

// Enabled implements slog.Handler.
func (c *Capture) Enabled(_ context.Context, level slog.Level) bool {
	return level >= c.Level
}

// Handle implements slog.Handler.
func (c *Capture) Handle(_ context.Context, r slog.Record) error {
	rec := Record{Level: r.Level, Message: r.Message, Attrs: make(map[string]any)}
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs[a.Key] = a.Value.Any()
		return true
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
	return nil
}

// WithAttrs implements slog.Handler. Attributes are not retained.
func (c *Capture) WithAttrs(_ []slog.Attr) slog.Handler { return c }

// WithGroup implements slog.Handler. Groups are not retained.
func (c *Capture) WithGroup(_ string) slog.Handler { return c }

// Messages returns the captured records with the given message.
func (c *Capture) Messages(msg string) []Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Record
	for _, r := range c.records {
		if r.Message == msg {
			out = append(out, r)
		}
	}
	return out
}
