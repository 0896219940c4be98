// Package logger provides the leveled console logger used for findr
// diagnostics. Messages are timestamped, filtered by level, and colored
// when the destination is a terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger writes leveled diagnostic messages to a writer with
// [HH:MM:SS] timestamps. It is safe for concurrent use.
// Color output is automatically enabled for os.Stdout/os.Stderr when they
// are terminals; the fatih/color package honors NO_COLOR.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger writing to the provided writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive);
// empty or invalid levels default to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
// Returns true for os.Stdout and os.Stderr when they are TTYs.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		// The color library's detection also covers the NO_COLOR env var.
		return !color.NoColor
	}
	return false
}

// normalizeLogLevel converts a log level string to lowercase and validates
// it, defaulting to "info" for empty or unknown levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// shouldLog reports whether a message at messageLevel passes the filter.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// write emits one timestamped line, applying the level color when enabled.
func (cl *ConsoleLogger) write(level string, colorize *color.Color, format string, args ...interface{}) {
	if cl.writer == nil || !cl.shouldLog(level) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	timestamp := time.Now().Format("15:04:05")
	message := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("[%s] %s: %s", timestamp, strings.ToUpper(level), message)

	if cl.colorOutput && colorize != nil {
		fmt.Fprintln(cl.writer, colorize.Sprint(line))
		return
	}
	fmt.Fprintln(cl.writer, line)
}

// Trace logs at trace level.
func (cl *ConsoleLogger) Trace(format string, args ...interface{}) {
	cl.write("trace", nil, format, args...)
}

// Debug logs at debug level.
func (cl *ConsoleLogger) Debug(format string, args ...interface{}) {
	cl.write("debug", nil, format, args...)
}

// Info logs at info level.
func (cl *ConsoleLogger) Info(format string, args ...interface{}) {
	cl.write("info", color.New(color.FgCyan), format, args...)
}

// Warn logs at warn level. Traversal warnings (permission errors, symlink
// cycles) arrive here.
func (cl *ConsoleLogger) Warn(format string, args ...interface{}) {
	cl.write("warn", color.New(color.FgYellow), format, args...)
}

// Error logs at error level.
func (cl *ConsoleLogger) Error(format string, args ...interface{}) {
	cl.write("error", color.New(color.FgRed), format, args...)
}
