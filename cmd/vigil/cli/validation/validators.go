// Package validation provides input validation functions for the vigil CLI.
// This package has no dependencies to avoid import cycles.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// pathSafeRegex matches alphanumeric characters, underscores, and hyphens only.
// Used to validate names that will be used in file paths.
var pathSafeRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateLogName validates that a log file name contains only safe characters.
// This prevents path traversal when the name is used to build the log file path.
func ValidateLogName(name string) error {
	if name == "" {
		return errors.New("log name cannot be empty")
	}
	if !pathSafeRegex.MatchString(name) {
		return fmt.Errorf("invalid log name %q: must be alphanumeric with underscores/hyphens only", name)
	}
	return nil
}

// ValidateRefName validates a reference name used for the shadow pointer.
// It must live under a dedicated namespace and contain no unsafe components.
func ValidateRefName(name string) error {
	if name == "" {
		return errors.New("ref name cannot be empty")
	}
	if !strings.HasPrefix(name, "refs/") {
		return fmt.Errorf("invalid ref name %q: must start with refs/", name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("invalid ref name %q: empty or dot component", name)
		}
	}
	return nil
}
