package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ficHandler is a custom slog.Handler that formats log records as:
//
//	<timestamp>\t<level>\t<opID>\t<message>\t<key=value ...>
type ficHandler struct {
	w     io.Writer
	opID  string
	min   slog.Level
	attrs []slog.Attr
}

func (h *ficHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.min
}

func (h *ficHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time.UTC().Format("2006-01-02T15:04:05Z")
	level := r.Level.String()

	// Render the whole record into a buffer and emit it as a single
	// Write. Verification workers log concurrently, and a record built
	// from several small writes would interleave with theirs.
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\t%s\t%s\t%s", ts, level, h.opID, r.Message)

	// Pre-set attrs.
	for _, a := range h.attrs {
		fmt.Fprintf(&buf, "\t%s=%v", a.Key, a.Value)
	}

	// Per-record attrs.
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&buf, "\t%s=%v", a.Key, a.Value)
		return true
	})

	buf.WriteByte('\n')
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *ficHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ficHandler{
		w:     h.w,
		opID:  h.opID,
		min:   h.min,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *ficHandler) WithGroup(string) slog.Handler { return h }

// newLogger creates a structured logger writing to a rotated log file
// under logDir, mirrored to stderr. The log file is capped and rotated
// by lumberjack so a long-lived install never fills the disk with
// verification logs. It returns the slog.Logger and a closer for the
// rotation handle.
func newLogger(logDir string, opID string) (*slog.Logger, io.Closer, error) {
	return newLoggerTo(logDir, opID, os.Stderr)
}

// newLoggerTo is newLogger with the mirror writer injected for tests.
func newLoggerTo(logDir, opID string, mirror io.Writer) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "fic.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
	}

	w := io.MultiWriter(rotator, mirror)
	handler := &ficHandler{w: w, opID: opID, min: slog.LevelDebug}
	return slog.New(handler), rotator, nil
}

// slogAdapter wraps *slog.Logger to satisfy the fic.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }
