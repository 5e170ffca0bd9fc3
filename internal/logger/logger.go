// Package logger builds the diagnostic logger used by every hookguard command.
// Guard verdicts go to stdout; everything here goes to stderr or a log file,
// and every string attribute is redacted before it is written.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gzhole/hookguard/internal/redact"
)

// DefaultLevel keeps hook invocations quiet unless something goes wrong.
const DefaultLevel = "warn"

// Options selects where diagnostics go and how verbose they are.
type Options struct {
	Level string
	File  string
}

// New returns a text logger writing to w.
func New(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: redactAttr,
	})
	return slog.New(handler).With("component", "hookguard"), nil
}

// Open builds a logger from opts. When opts.File is set the log file is
// opened for append and returned so the caller can close it; otherwise
// diagnostics go to stderr and the returned closer is a no-op.
func Open(opts Options, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	writer := stderr
	var closer io.Closer = nopCloser{}

	if path := strings.TrimSpace(opts.File); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		writer = f
		closer = f
	}

	log, err := New(writer, opts.Level)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return log, closer, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a config string to a slog level. Empty means DefaultLevel.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		return ParseLevel(DefaultLevel)
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", level)
	}
}

func redactAttr(groups []string, a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		if a.Key == slog.MessageKey || a.Key == slog.LevelKey {
			return a
		}
		return slog.String(a.Key, redact.ForLog(a.Value.String()))
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, redact.ForLog(err.Error()))
		}
	}
	return a
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
