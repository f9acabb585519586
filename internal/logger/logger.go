// Package logger provides structured logging for the JabaBox server.
//
// It wraps log/slog with a package-level API so every layer logs through
// the same handler. Output format (text or JSON), level, and destination
// are switchable at runtime via Init.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds logger configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or a file path
}

var (
	mu       sync.RWMutex
	slogger  *slog.Logger
	levelVar = new(slog.LevelVar)
	output   io.Writer = os.Stdout
	useColor bool
)

func init() {
	levelVar.Set(slog.LevelInfo)
	if f, ok := output.(*os.File); ok {
		useColor = isTerminal(f)
	}
	rebuild("text")
}

// rebuild replaces the active handler. Callers must hold mu or be in init.
func rebuild(format string) {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: levelVar}
	if format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = newTextHandler(output, opts, useColor)
	}
	slogger = slog.New(handler)
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}

// Init initializes the logger with the given configuration.
// Output can be "stdout", "stderr", or a file path; files are opened in
// append mode.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	format := strings.ToLower(cfg.Format)
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown log format: %q", cfg.Format)
	}

	mu.Lock()
	defer mu.Unlock()

	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		output = os.Stdout
		useColor = isTerminal(os.Stdout)
	case "stderr":
		output = os.Stderr
		useColor = isTerminal(os.Stderr)
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		output = f
		useColor = false
	}

	levelVar.Set(level)
	rebuild(format)
	return nil
}

// SetLevel changes the minimum level without rebuilding the handler.
func SetLevel(level slog.Level) {
	levelVar.Set(level)
}

// SetOutput redirects log output to the given writer. Used by tests.
func SetOutput(w io.Writer, format string) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	useColor = false
	rebuild(format)
}

func log() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// Debug logs at DEBUG level with alternating key/value attributes.
func Debug(msg string, args ...any) {
	log().Debug(msg, args...)
}

// Info logs at INFO level with alternating key/value attributes.
func Info(msg string, args ...any) {
	log().Info(msg, args...)
}

// Warn logs at WARN level with alternating key/value attributes.
func Warn(msg string, args ...any) {
	log().Warn(msg, args...)
}

// Error logs at ERROR level with alternating key/value attributes.
func Error(msg string, args ...any) {
	log().Error(msg, args...)
}

// With returns a slog.Logger carrying preset attributes, for components
// that emit many records with the same context.
func With(args ...any) *slog.Logger {
	return log().With(args...)
}

// isTerminal reports whether the file is attached to a character device.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
