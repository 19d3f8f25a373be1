// Package log provides categorized structured logging for circ.
// Every call names a category so log output can be filtered by subsystem.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Category identifies the subsystem emitting a log record.
type Category string

const (
	CatDB     Category = "db"
	CatApp    Category = "app"
	CatCLI    Category = "cli"
	CatConfig Category = "config"
)

var (
	mu     sync.RWMutex
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	closer io.Closer
)

// Init configures the package logger. When path is empty, records go to
// stderr; otherwise they are appended to the named file. Level accepts
// "debug", "info", "warn" or "error" (default info).
func Init(level, path string) error {
	var out io.Writer = os.Stderr
	var c io.Closer
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		out = f
		c = f
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: parseLevel(level)})

	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		_ = closer.Close()
	}
	logger = slog.New(handler)
	closer = c
	return nil
}

// Close releases the log file, if one is open.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return err
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func withCategory(cat Category, args []any) []any {
	return append([]any{"cat", string(cat)}, args...)
}

// Debug logs a debug record in the given category.
func Debug(cat Category, msg string, args ...any) {
	current().Debug(msg, withCategory(cat, args)...)
}

// Info logs an info record in the given category.
func Info(cat Category, msg string, args ...any) {
	current().Info(msg, withCategory(cat, args)...)
}

// Warn logs a warning record in the given category.
func Warn(cat Category, msg string, args ...any) {
	current().Warn(msg, withCategory(cat, args)...)
}

// Error logs an error record in the given category.
func Error(cat Category, msg string, args ...any) {
	current().Error(msg, withCategory(cat, args)...)
}

// ErrorErr logs an error record with the error attached as an attribute.
func ErrorErr(cat Category, msg string, err error, args ...any) {
	current().Error(msg, withCategory(cat, append([]any{"error", err}, args...))...)
}
