// Package settings provides configuration loading for vigil.
// This package is separate from cli so the watcher package can import it
// without creating an import cycle (cli imports watcher).
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/vigilhq/cli/cmd/vigil/cli/jsonutil"
	"github.com/vigilhq/cli/cmd/vigil/cli/paths"
)

// Defaults applied when the settings file is absent or a field is zero.
const (
	DefaultIntervalSeconds = 5
	DefaultSummarizeLimit  = 10
)

// Settings represents the .vigil/settings.json configuration.
type Settings struct {
	// IntervalSeconds is the reconciliation period of the watch scheduler.
	IntervalSeconds int `json:"interval_seconds"`

	// LogLevel sets the logging verbosity (debug, info, warn, error).
	// Can be overridden by the VIGIL_LOG_LEVEL environment variable.
	// Defaults to "info".
	LogLevel string `json:"log_level,omitempty"`

	// SummarizeLimit is the default number of checkpoints the summarize
	// command walks back through.
	SummarizeLimit int `json:"summarize_limit,omitempty"`

	// Telemetry controls anonymous usage analytics.
	// nil = not configured (disabled), true = opted in, false = opted out
	Telemetry *bool `json:"telemetry,omitempty"`
}

// Default returns the settings used when no file exists.
func Default() *Settings {
	return &Settings{
		IntervalSeconds: DefaultIntervalSeconds,
		LogLevel:        "info",
		SummarizeLimit:  DefaultSummarizeLimit,
	}
}

// Interval returns the scheduler period as a duration, falling back to the
// default when the configured value is not positive.
func (s *Settings) Interval() time.Duration {
	secs := s.IntervalSeconds
	if secs <= 0 {
		secs = DefaultIntervalSeconds
	}
	return time.Duration(secs) * time.Second
}

// Load loads the settings from .vigil/settings.json.
// Returns default settings if the file does not exist.
// Works correctly from any subdirectory within the repository.
func Load() (*Settings, error) {
	path, err := paths.AbsPath(paths.SettingsFile)
	if err != nil {
		path = paths.SettingsFile // Fallback to relative
	}
	return loadFromFile(path)
}

// loadFromFile reads and parses a settings file, applying defaults for
// missing fields.
func loadFromFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from AbsPath or constant
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	s := Default()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings file: %w", err)
	}
	if s.IntervalSeconds <= 0 {
		s.IntervalSeconds = DefaultIntervalSeconds
	}
	if s.SummarizeLimit <= 0 {
		s.SummarizeLimit = DefaultSummarizeLimit
	}
	return s, nil
}

// Save writes the settings to .vigil/settings.json at the repository root.
func Save(s *Settings) error {
	path, err := paths.AbsPath(paths.SettingsFile)
	if err != nil {
		return fmt.Errorf("resolving settings path: %w", err)
	}

	data, err := jsonutil.MarshalIndentWithNewline(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}
