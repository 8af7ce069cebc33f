package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSettingsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	s := Default()

	if s.IntervalSeconds != DefaultIntervalSeconds {
		t.Errorf("IntervalSeconds = %d, want %d", s.IntervalSeconds, DefaultIntervalSeconds)
	}
	if s.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", s.LogLevel, "info")
	}
	if s.SummarizeLimit != DefaultSummarizeLimit {
		t.Errorf("SummarizeLimit = %d, want %d", s.SummarizeLimit, DefaultSummarizeLimit)
	}
	if s.Telemetry != nil {
		t.Errorf("Telemetry = %v, want nil (not configured)", *s.Telemetry)
	}
}

func TestInterval(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    time.Duration
	}{
		{"configured value", 30, 30 * time.Second},
		{"zero falls back to default", 0, DefaultIntervalSeconds * time.Second},
		{"negative falls back to default", -5, DefaultIntervalSeconds * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Settings{IntervalSeconds: tt.seconds}
			if got := s.Interval(); got != tt.want {
				t.Errorf("Interval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	s, err := loadFromFile(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("loadFromFile() error = %v, want defaults for missing file", err)
	}
	if s.IntervalSeconds != DefaultIntervalSeconds {
		t.Errorf("IntervalSeconds = %d, want default %d", s.IntervalSeconds, DefaultIntervalSeconds)
	}
}

func TestLoadFromFile_PartialFieldsGetDefaults(t *testing.T) {
	path := writeSettingsFile(t, `{"interval_seconds": 30}`)

	s, err := loadFromFile(path)
	if err != nil {
		t.Fatalf("loadFromFile() error = %v", err)
	}
	if s.IntervalSeconds != 30 {
		t.Errorf("IntervalSeconds = %d, want 30", s.IntervalSeconds)
	}
	if s.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default %q", s.LogLevel, "info")
	}
	if s.SummarizeLimit != DefaultSummarizeLimit {
		t.Errorf("SummarizeLimit = %d, want default %d", s.SummarizeLimit, DefaultSummarizeLimit)
	}
}

func TestLoadFromFile_InvalidValuesFallBack(t *testing.T) {
	path := writeSettingsFile(t, `{"interval_seconds": -1, "summarize_limit": 0}`)

	s, err := loadFromFile(path)
	if err != nil {
		t.Fatalf("loadFromFile() error = %v", err)
	}
	if s.IntervalSeconds != DefaultIntervalSeconds {
		t.Errorf("IntervalSeconds = %d, want default %d", s.IntervalSeconds, DefaultIntervalSeconds)
	}
	if s.SummarizeLimit != DefaultSummarizeLimit {
		t.Errorf("SummarizeLimit = %d, want default %d", s.SummarizeLimit, DefaultSummarizeLimit)
	}
}

func TestLoadFromFile_MalformedJSON(t *testing.T) {
	path := writeSettingsFile(t, `{not json`)

	if _, err := loadFromFile(path); err == nil {
		t.Error("loadFromFile() = nil error for malformed JSON, want error")
	}
}

func TestLoadFromFile_TelemetryOptIn(t *testing.T) {
	path := writeSettingsFile(t, `{"telemetry": true}`)

	s, err := loadFromFile(path)
	if err != nil {
		t.Fatalf("loadFromFile() error = %v", err)
	}
	if s.Telemetry == nil || !*s.Telemetry {
		t.Errorf("Telemetry = %v, want opted in", s.Telemetry)
	}
}
