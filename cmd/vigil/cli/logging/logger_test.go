package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     slog.Level
	}{
		{"empty defaults to INFO", "", slog.LevelInfo},
		{"DEBUG lowercase", "debug", slog.LevelDebug},
		{"DEBUG uppercase", "DEBUG", slog.LevelDebug},
		{"INFO lowercase", "info", slog.LevelInfo},
		{"INFO uppercase", "INFO", slog.LevelInfo},
		{"WARN lowercase", "warn", slog.LevelWarn},
		{"WARN uppercase", "WARN", slog.LevelWarn},
		{"ERROR lowercase", "error", slog.LevelError},
		{"ERROR uppercase", "ERROR", slog.LevelError},
		{"invalid defaults to INFO", "invalid", slog.LevelInfo},
		{"warning alias", "warning", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseLogLevel(tt.envValue)
			if got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.envValue, got, tt.want)
			}
		})
	}
}

func TestInit_CreatesLogFile(t *testing.T) {
	tmpDir := t.TempDir()
	initGitRepo(t, tmpDir)

	if err := Init("daemon"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer Close()

	logFile := filepath.Join(tmpDir, ".vigil", "logs", "daemon.log")
	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		t.Errorf("Init() did not create log file at %s", logFile)
	}
}

func TestInit_WritesJSONLogs(t *testing.T) {
	tmpDir := t.TempDir()
	initGitRepo(t, tmpDir)

	if err := Init("daemon"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	Info(context.Background(), "test message", slog.String("key", "value"))
	Close()

	content, err := os.ReadFile(filepath.Join(tmpDir, ".vigil", "logs", "daemon.log"))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	var logEntry map[string]any
	if err := json.Unmarshal(content, &logEntry); err != nil {
		t.Fatalf("Log output is not valid JSON: %v\nContent: %s", err, content)
	}

	if msg, ok := logEntry["msg"].(string); !ok || msg != "test message" {
		t.Errorf("Expected msg='test message', got %v", logEntry["msg"])
	}
	if key, ok := logEntry["key"].(string); !ok || key != "value" {
		t.Errorf("Expected key='value', got %v", logEntry["key"])
	}
	if _, ok := logEntry["time"]; !ok {
		t.Error("Expected 'time' field in log entry")
	}
	if _, ok := logEntry["level"]; !ok {
		t.Error("Expected 'level' field in log entry")
	}
}

func TestInit_RespectsLogLevel(t *testing.T) {
	tmpDir := t.TempDir()
	initGitRepo(t, tmpDir)

	t.Setenv(LogLevelEnvVar, "WARN")

	if err := Init("daemon"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	ctx := context.Background()
	Debug(ctx, "debug message")
	Info(ctx, "info message")
	Warn(ctx, "warn message")
	Close()

	content, err := os.ReadFile(filepath.Join(tmpDir, ".vigil", "logs", "daemon.log"))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	contentStr := string(content)
	if strings.Contains(contentStr, "debug message") {
		t.Error("DEBUG message should not be logged when level is WARN")
	}
	if strings.Contains(contentStr, "info message") {
		t.Error("INFO message should not be logged when level is WARN")
	}
	if !strings.Contains(contentStr, "warn message") {
		t.Error("WARN message should be logged when level is WARN")
	}
}

func TestInit_UsesLogLevelGetter(t *testing.T) {
	tmpDir := t.TempDir()
	initGitRepo(t, tmpDir)

	SetLogLevelGetter(func() string { return "error" })
	defer SetLogLevelGetter(nil)

	if err := Init("daemon"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	ctx := context.Background()
	Warn(ctx, "warn message")
	Error(ctx, "error message")
	Close()

	content, err := os.ReadFile(filepath.Join(tmpDir, ".vigil", "logs", "daemon.log"))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	contentStr := string(content)
	if strings.Contains(contentStr, "warn message") {
		t.Error("WARN message should not be logged when settings level is ERROR")
	}
	if !strings.Contains(contentStr, "error message") {
		t.Error("ERROR message should be logged when settings level is ERROR")
	}
}

func TestInit_RejectsInvalidLogNames(t *testing.T) {
	tests := []struct {
		name    string
		logName string
		wantErr bool
	}{
		{"empty name", "", true},
		{"path traversal", "../../../tmp/evil", true},
		{"contains slash", "logs/daemon", true},
		{"valid name", "daemon", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetLogger()

			if !tt.wantErr {
				initGitRepo(t, t.TempDir())
			}

			err := Init(tt.logName)
			if (err != nil) != tt.wantErr {
				t.Errorf("Init(%q) error = %v, wantErr %v", tt.logName, err, tt.wantErr)
			}
			Close()
		})
	}
}

func TestInit_FallsBackToStderrOnError(t *testing.T) {
	tmpDir := t.TempDir()
	initGitRepo(t, tmpDir)

	// Block log file creation with a same-named directory.
	logFilePath := filepath.Join(tmpDir, ".vigil", "logs", "daemon.log")
	if err := os.MkdirAll(logFilePath, 0o755); err != nil {
		t.Fatalf("Failed to create blocking dir: %v", err)
	}

	if err := Init("daemon"); err != nil {
		t.Errorf("Init() should fall back to stderr, got error: %v", err)
	}

	// The fallback logger must still work.
	Info(context.Background(), "fallback test")
	Close()
}

func TestClose_SafeToCallMultipleTimes(t *testing.T) {
	tmpDir := t.TempDir()
	initGitRepo(t, tmpDir)

	if err := Init("daemon"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	// Should not panic
	Close()
	Close()
	Close()
}

func TestLogging_BeforeInit(_ *testing.T) {
	resetLogger()

	// These should not panic, should use default stderr logger
	ctx := context.Background()
	Debug(ctx, "debug before init")
	Info(ctx, "info before init")
	Warn(ctx, "warn before init")
	Error(ctx, "error before init")
}

func TestLogging_IncludesContextValues(t *testing.T) {
	resetLogger()

	var buf bytes.Buffer
	mu.Lock()
	logger = createLogger(&buf, slog.LevelInfo)
	mu.Unlock()
	defer resetLogger()

	ctx := WithComponent(context.Background(), "scheduler")
	ctx = WithCycle(ctx, 7)

	Info(ctx, "context test message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Log output is not valid JSON: %v\nContent: %s", err, buf.String())
	}

	if logEntry["component"] != "scheduler" {
		t.Errorf("Expected component='scheduler', got %v", logEntry["component"])
	}
	if logEntry["cycle"] != float64(7) {
		t.Errorf("Expected cycle=7, got %v", logEntry["cycle"])
	}
}

// Helper to initialize a git repo for tests
func initGitRepo(t *testing.T, dir string) {
	t.Helper()
	t.Chdir(dir)
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "sh", "-c", "git init && git config user.email 'test@test.com' && git config user.name 'Test'")
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Failed to init git repo: %v\nOutput: %s", err, output)
	}
}
