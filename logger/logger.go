package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
	closer io.Closer
}

// New creates a logger writing text records to w at the given level.
func New(levelStr string, w io.Writer) *Logger {
	if w == nil {
		w = io.Discard
	}
	level := getLogLevel(levelStr)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}
	return &Logger{Logger: slog.New(slog.NewTextHandler(w, opts))}
}

// NewFile opens path through bubbletea's log file helper so the TUI keeps the
// terminal to itself. An empty path discards all records.
func NewFile(levelStr string, path string) (*Logger, error) {
	if strings.TrimSpace(path) == "" {
		return Discard(), nil
	}
	f, err := tea.LogToFile(path, "seatmap")
	if err != nil {
		return nil, err
	}
	l := New(levelStr, f)
	l.closer = f
	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New("error", io.Discard)
}

// Stderr is used by commands that run without the TUI.
func Stderr(levelStr string) *Logger {
	return New(levelStr, os.Stderr)
}

// Close releases the underlying file, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent tags records with the emitting package.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("component", name)),
		closer: l.closer,
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
		closer: l.closer,
	}
}
