package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/footprint-tools/comfort/internal/domain"
)

// Level is the severity of a log line.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string to a Level.
// Valid values: "debug", "info", "warn", "error" (case insensitive).
// Returns LevelWarn if the string is not recognized.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelWarn
	}
}

// Logger writes leveled lines to a file or any writer. Safe for concurrent use.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	closer   io.Closer
	minLevel Level
	enabled  bool
	prefix   string
	now      func() time.Time
}

// New creates a logger appending to logPath. The directory is created with
// 0700 and the file is kept at 0600.
func New(logPath string, minLevel Level) (*Logger, error) {
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	if info, err := os.Stat(logPath); err == nil && info.Mode().Perm() != 0600 {
		if err := os.Chmod(logPath, 0600); err != nil {
			return nil, fmt.Errorf("chmod existing log file: %w", err)
		}
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	l := NewWriter(file, minLevel)
	l.closer = file
	return l, nil
}

// NewWriter creates a logger that writes to w. Closing it does not close w.
func NewWriter(w io.Writer, minLevel Level) *Logger {
	return &Logger{
		out:      w,
		minLevel: minLevel,
		enabled:  true,
		now:      time.Now,
	}
}

// Close closes the underlying file, if the logger owns one.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closer.Close()
}

// SetEnabled turns logging on or off.
func (l *Logger) SetEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

// WithPrefix returns a logger sharing l's output whose lines are tagged with
// prefix, e.g. the id of the invocation being dispatched.
func (l *Logger) WithPrefix(prefix string) domain.Logger {
	if l == nil {
		return NopLogger{}
	}
	return &prefixed{base: l, prefix: prefix}
}

func (l *Logger) log(level Level, prefix, format string, args ...any) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || level < l.minLevel {
		return
	}

	message := fmt.Sprintf(format, args...)
	if prefix != "" {
		message = "[" + prefix + "] " + message
	}
	line := fmt.Sprintf("[%s] %s: %s\n", l.now().Format("2006-01-02 15:04:05"), level.String(), message)

	if _, err := io.WriteString(l.out, line); err != nil && level >= LevelError {
		fmt.Fprintf(os.Stderr, "logger: write failed: %v (message: %s)\n", err, message)
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LevelDebug, "", format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, "", format, args...)
}

// Warn logs a warning.
func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, "", format, args...)
}

// Error logs an error.
func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, "", format, args...)
}

// Writer returns an io.Writer that logs each write at level.
func (l *Logger) Writer(level Level) io.Writer {
	return &logWriter{logger: l, level: level}
}

type logWriter struct {
	logger *Logger
	level  Level
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.logger.log(w.level, "", "%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

type prefixed struct {
	base   *Logger
	prefix string
}

func (p *prefixed) Debug(format string, args ...any) { p.base.log(LevelDebug, p.prefix, format, args...) }
func (p *prefixed) Info(format string, args ...any)  { p.base.log(LevelInfo, p.prefix, format, args...) }
func (p *prefixed) Warn(format string, args ...any)  { p.base.log(LevelWarn, p.prefix, format, args...) }
func (p *prefixed) Error(format string, args ...any) { p.base.log(LevelError, p.prefix, format, args...) }

// Close is a no-op; the base logger owns the output.
func (p *prefixed) Close() error { return nil }

// NopLogger is a logger that discards all messages.
type NopLogger struct{}

func (NopLogger) Debug(_ string, _ ...any) {}
func (NopLogger) Info(_ string, _ ...any)  {}
func (NopLogger) Warn(_ string, _ ...any)  {}
func (NopLogger) Error(_ string, _ ...any) {}
func (NopLogger) Close() error             { return nil }

var _ domain.Logger = (*Logger)(nil)
var _ domain.Logger = (*prefixed)(nil)
var _ domain.Logger = NopLogger{}
