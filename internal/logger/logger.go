package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogEntry represents a captured log entry for the log panel.
type LogEntry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Detail  string
}

// ringBuffer is a fixed-size circular buffer for log entries.
type ringBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	size    int
	head    int
	count   int

	// Counters
	warnCount  int
	errorCount int
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		entries: make([]LogEntry, size),
		size:    size,
	}
}

func (rb *ringBuffer) add(entry LogEntry) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.entries[rb.head] = entry
	rb.head = (rb.head + 1) % rb.size
	if rb.count < rb.size {
		rb.count++
	}

	// Update counters
	if entry.Level == slog.LevelWarn {
		rb.warnCount++
	} else if entry.Level >= slog.LevelError {
		rb.errorCount++
	}
}

func (rb *ringBuffer) getAll() []LogEntry {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	result := make([]LogEntry, rb.count)
	for i := 0; i < rb.count; i++ {
		idx := (rb.head - rb.count + i + rb.size) % rb.size
		result[i] = rb.entries[idx]
	}
	return result
}

func (rb *ringBuffer) getCounts() (warn, err int) {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.warnCount, rb.errorCount
}

func (rb *ringBuffer) clearCounts() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.warnCount = 0
	rb.errorCount = 0
}

// panelHandler wraps another handler to capture entries for the log panel.
type panelHandler struct {
	inner    slog.Handler
	buffer   *ringBuffer
	minLevel slog.Level
}

func (h *panelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *panelHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.minLevel {
		entry := LogEntry{
			Time:    r.Time,
			Level:   r.Level,
			Message: r.Message,
		}
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == "error" {
				entry.Detail = a.Value.String()
				return false
			}
			return true
		})
		h.buffer.add(entry)
	}
	return h.inner.Handle(ctx, r)
}

func (h *panelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &panelHandler{
		inner:    h.inner.WithAttrs(attrs),
		buffer:   h.buffer,
		minLevel: h.minLevel,
	}
}

func (h *panelHandler) WithGroup(name string) slog.Handler {
	return &panelHandler{
		inner:    h.inner.WithGroup(name),
		buffer:   h.buffer,
		minLevel: h.minLevel,
	}
}

var (
	// Log is the global structured logger
	Log *slog.Logger
	// logWriter is the rotating log writer
	logWriter *lumberjack.Logger
	// LogPath is the path to the current log file
	LogPath string
	// panelBuffer holds recent entries for the log panel
	panelBuffer *ringBuffer
	// debugEnabled tracks if debug mode is active
	debugEnabled bool
)

// LogLevel represents the logging level
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// InitLogger initializes the global logger with the specified level and optional path.
// If logPath is empty, defaults to ~/.config/tanic/tanic.log
func InitLogger(level LogLevel, logPath string) {
	debugEnabled = level == LevelDebug

	opts := &slog.HandlerOptions{
		Level: level.slogLevel(),
	}

	// Determine log path
	if logPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = os.TempDir()
		}
		logDir := filepath.Join(homeDir, ".config", "tanic")
		_ = os.MkdirAll(logDir, 0755)
		logPath = filepath.Join(logDir, "tanic.log")
	}

	LogPath = logPath

	// Use lumberjack for log rotation
	logWriter = &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   true,
	}
	var writer io.Writer = logWriter

	Log = newLogger(writer, opts)
	slog.SetDefault(Log)
}

// InitWriter initializes the global logger to write JSON records to w.
// Tests use it to keep log output out of the terminal.
func InitWriter(level LogLevel, w io.Writer) {
	debugEnabled = level == LevelDebug
	Log = newLogger(w, &slog.HandlerOptions{Level: level.slogLevel()})
	slog.SetDefault(Log)
}

func newLogger(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	// Ring buffer for the log panel (last 100 entries)
	panelBuffer = newRingBuffer(100)

	// Create handler chain: panelHandler -> JSONHandler -> writer
	handler := &panelHandler{
		inner:    slog.NewJSONHandler(w, opts),
		buffer:   panelBuffer,
		minLevel: slog.LevelInfo,
	}
	return slog.New(handler)
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Close closes the log file
func Close() {
	if logWriter != nil {
		logWriter.Close()
	}
}

// getLogger returns the global logger, or the default slog logger if not initialized.
func getLogger() *slog.Logger {
	if Log != nil {
		return Log
	}
	return slog.Default()
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	getLogger().Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	getLogger().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	getLogger().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	getLogger().Error(msg, args...)
}

// With creates a new logger with additional attributes
func With(args ...any) *slog.Logger {
	return getLogger().With(args...)
}

// GetCounts returns the current warning and error counts.
func GetCounts() (warn, err int) {
	if panelBuffer == nil {
		return 0, 0
	}
	return panelBuffer.getCounts()
}

// ClearCounts resets the warning and error counters.
func ClearCounts() {
	if panelBuffer != nil {
		panelBuffer.clearCounts()
	}
}

// GetEntries returns all captured log entries, oldest first.
func GetEntries() []LogEntry {
	if panelBuffer == nil {
		return nil
	}
	return panelBuffer.getAll()
}

// GetRecent returns at most n of the newest captured entries, oldest first.
func GetRecent(n int) []LogEntry {
	entries := GetEntries()
	if n >= 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries
}

// IsDebugEnabled returns true if debug mode is active.
func IsDebugEnabled() bool {
	return debugEnabled
}

// Format renders a log entry for the log panel.
func (e LogEntry) Format() string {
	levelStr := "INFO"
	switch e.Level {
	case slog.LevelDebug:
		levelStr = "DEBUG"
	case slog.LevelInfo:
		levelStr = "INFO"
	case slog.LevelWarn:
		levelStr = "WARN"
	case slog.LevelError:
		levelStr = "ERROR"
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s %-5s %s: %s", e.Time.Format("15:04:05"), levelStr, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s %-5s %s", e.Time.Format("15:04:05"), levelStr, e.Message)
}
