// Package logging provides structured logging for the vigil CLI using slog.
//
// Usage:
//
//	// Initialize logger for a process (typically at daemon start)
//	if err := logging.Init("daemon"); err != nil {
//	    // handle error
//	}
//	defer logging.Close()
//
//	// Add context values
//	ctx = logging.WithComponent(ctx, "scheduler")
//	ctx = logging.WithCycle(ctx, cycle)
//
//	// Log with context - component/cycle extracted automatically
//	logging.Info(ctx, "checkpoint recorded",
//	    slog.String("commit", hash.String()),
//	)
package logging

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vigilhq/cli/cmd/vigil/cli/paths"
	"github.com/vigilhq/cli/cmd/vigil/cli/validation"
)

// LogLevelEnvVar is the environment variable that controls log level.
const LogLevelEnvVar = "VIGIL_LOG_LEVEL"

var (
	// logger is the package-level logger instance
	logger *slog.Logger

	// logFile holds the current log file handle for cleanup
	logFile *os.File

	// logBufWriter wraps logFile with buffered I/O for performance
	logBufWriter *bufio.Writer

	// mu protects logger, logFile and logBufWriter
	mu sync.RWMutex

	// logLevelGetter is an optional callback to get log level from settings.
	// Set by SetLogLevelGetter before Init is called.
	logLevelGetter func() string
)

// SetLogLevelGetter sets a callback function to get the log level from settings.
// This allows the logging package to read settings without a circular dependency.
// The callback is only used if VIGIL_LOG_LEVEL env var is not set.
func SetLogLevelGetter(getter func() string) {
	mu.Lock()
	defer mu.Unlock()
	logLevelGetter = getter
}

// Init initializes the logger, writing JSON logs to .vigil/logs/<name>.log.
//
// If the log file cannot be created, falls back to stderr.
// Log level is controlled by the VIGIL_LOG_LEVEL environment variable,
// then the settings callback.
func Init(name string) error {
	// Validate name to prevent path traversal
	if err := validation.ValidateLogName(name); err != nil {
		return fmt.Errorf("invalid log name: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()

	// Close any existing log file (flush buffer first)
	if logBufWriter != nil {
		_ = logBufWriter.Flush()
		logBufWriter = nil
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	levelStr := os.Getenv(LogLevelEnvVar)
	if levelStr == "" && logLevelGetter != nil {
		levelStr = logLevelGetter()
	}
	level := parseLogLevel(levelStr)

	if levelStr != "" && !isValidLogLevel(levelStr) {
		fmt.Fprintf(os.Stderr, "[vigil] Warning: invalid log level %q, defaulting to INFO\n", levelStr)
	}

	logsPath, err := paths.AbsPath(paths.LogsDir)
	if err != nil {
		logger = createLogger(os.Stderr, level)
		return nil //nolint:nilerr // Outside a repo, stderr logging is the fallback
	}

	if err := os.MkdirAll(logsPath, 0o750); err != nil {
		logger = createLogger(os.Stderr, level)
		return nil //nolint:nilerr // Fall back to stderr
	}

	logFilePath := filepath.Join(logsPath, name+".log")
	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // name validated above
	if err != nil {
		logger = createLogger(os.Stderr, level)
		return nil //nolint:nilerr // Fall back to stderr
	}

	logFile = f
	logBufWriter = bufio.NewWriterSize(f, 8192) // 8KB buffer for batched writes
	logger = createLogger(logBufWriter, level)

	return nil
}

// Close closes the log file if one is open.
// Flushes any buffered data before closing.
// Safe to call multiple times.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logBufWriter != nil {
		_ = logBufWriter.Flush()
		logBufWriter = nil
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// Flush flushes buffered log data without closing the file.
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	if logBufWriter != nil {
		_ = logBufWriter.Flush()
	}
}

// resetLogger resets the logger to nil (for testing).
func resetLogger() {
	mu.Lock()
	defer mu.Unlock()
	logger = nil
	if logBufWriter != nil {
		_ = logBufWriter.Flush()
		logBufWriter = nil
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// getLogger returns the current logger, or a default stderr logger if not initialized.
func getLogger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	if logger == nil {
		return slog.Default()
	}
	return logger
}

// createLogger creates a JSON logger writing to the given writer at the specified level.
func createLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	handler := slog.NewJSONHandler(w, opts)
	return slog.New(handler)
}

// parseLogLevel parses a log level string to slog.Level.
// Returns slog.LevelInfo for empty or invalid values.
func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// isValidLogLevel checks if the given string is a valid log level.
func isValidLogLevel(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR", "":
		return true
	default:
		return false
	}
}

// Debug logs at DEBUG level with context values automatically extracted.
func Debug(ctx context.Context, msg string, attrs ...any) {
	log(ctx, slog.LevelDebug, msg, attrs...)
}

// Info logs at INFO level with context values automatically extracted.
func Info(ctx context.Context, msg string, attrs ...any) {
	log(ctx, slog.LevelInfo, msg, attrs...)
}

// Warn logs at WARN level with context values automatically extracted.
func Warn(ctx context.Context, msg string, attrs ...any) {
	log(ctx, slog.LevelWarn, msg, attrs...)
}

// Error logs at ERROR level with context values automatically extracted.
func Error(ctx context.Context, msg string, attrs ...any) {
	log(ctx, slog.LevelError, msg, attrs...)
}

// log extracts known context values and forwards to the underlying logger.
func log(ctx context.Context, level slog.Level, msg string, attrs ...any) {
	l := getLogger()

	if component := ComponentFromContext(ctx); component != "" {
		attrs = append(attrs, slog.String("component", component))
	}
	if cycle, ok := CycleFromContext(ctx); ok {
		attrs = append(attrs, slog.Uint64("cycle", cycle))
	}

	l.Log(ctx, level, msg, attrs...)
}
