package validation

import (
	"strings"
	"testing"
)

func TestValidateLogName(t *testing.T) {
	tests := []struct {
		name    string
		logName string
		wantErr bool
		errMsg  string
	}{
		// Valid cases
		{
			name:    "simple name",
			logName: "daemon",
			wantErr: false,
		},
		{
			name:    "name with hyphens and underscores",
			logName: "watch_daemon-1",
			wantErr: false,
		},
		{
			name:    "alphanumeric",
			logName: "daemon2",
			wantErr: false,
		},
		// Empty string (security-critical)
		{
			name:    "empty name",
			logName: "",
			wantErr: true,
			errMsg:  "cannot be empty",
		},
		// Path separators (security-critical - path traversal prevention)
		{
			name:    "forward slash",
			logName: "logs/daemon",
			wantErr: true,
			errMsg:  "must be alphanumeric with underscores/hyphens only",
		},
		{
			name:    "backslash",
			logName: "logs\\daemon",
			wantErr: true,
			errMsg:  "must be alphanumeric with underscores/hyphens only",
		},
		{
			name:    "path traversal attempt",
			logName: "../../etc/passwd",
			wantErr: true,
			errMsg:  "must be alphanumeric with underscores/hyphens only",
		},
		{
			name:    "dot in name",
			logName: "daemon.log",
			wantErr: true,
			errMsg:  "must be alphanumeric with underscores/hyphens only",
		},
		{
			name:    "space in name",
			logName: "daemon log",
			wantErr: true,
			errMsg:  "must be alphanumeric with underscores/hyphens only",
		},
		{
			name:    "null byte",
			logName: "daemon\x00log",
			wantErr: true,
			errMsg:  "must be alphanumeric with underscores/hyphens only",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLogName(tt.logName)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ValidateLogName(%q) expected error containing %q, got nil", tt.logName, tt.errMsg)
					return
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidateLogName(%q) error = %q, want error containing %q", tt.logName, err.Error(), tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("ValidateLogName(%q) unexpected error: %v", tt.logName, err)
			}
		})
	}
}

func TestValidateRefName(t *testing.T) {
	tests := []struct {
		name    string
		refName string
		wantErr bool
	}{
		// Valid cases
		{name: "shadow ref", refName: "refs/vigil/head", wantErr: false},
		{name: "deep namespace", refName: "refs/vigil/chains/main", wantErr: false},
		// Invalid - empty
		{name: "empty rejected", refName: "", wantErr: true},
		// Invalid - outside refs namespace
		{name: "bare name rejected", refName: "vigil-head", wantErr: true},
		{name: "HEAD rejected", refName: "HEAD", wantErr: true},
		// Invalid - unsafe components
		{name: "empty component", refName: "refs//head", wantErr: true},
		{name: "dot component", refName: "refs/./head", wantErr: true},
		{name: "dotdot component", refName: "refs/../head", wantErr: true},
		{name: "trailing slash", refName: "refs/vigil/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRefName(tt.refName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRefName(%q) error = %v, wantErr %v", tt.refName, err, tt.wantErr)
			}
		})
	}
}
