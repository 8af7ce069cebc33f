// Package paths centralizes the on-disk layout of vigil's hidden state
// directory and repository root discovery.
package paths

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// Directory and file constants, relative to the repository root.
const (
	VigilDir     = ".vigil"
	LogsDir      = ".vigil/logs"
	PIDFile      = ".vigil/daemon.pid"
	SettingsFile = ".vigil/settings.json"
)

// IgnoreEntry is the line appended to .gitignore so the hidden state
// directory never shows up as untracked content.
const IgnoreEntry = ".vigil"

// repoRootCache caches the repository root to avoid repeated git commands.
// The cache is keyed by the current working directory to handle directory changes.
var (
	repoRootMu       sync.RWMutex
	repoRootCache    string
	repoRootCacheDir string
)

// RepoRoot returns the git repository root directory.
// Uses 'git rev-parse --show-toplevel' which works from any subdirectory.
// The result is cached per working directory.
// Returns an error if not inside a git repository.
func RepoRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}

	repoRootMu.RLock()
	if repoRootCache != "" && repoRootCacheDir == cwd {
		cached := repoRootCache
		repoRootMu.RUnlock()
		return cached, nil
	}
	repoRootMu.RUnlock()

	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get git repository root: %w", err)
	}

	root := strings.TrimSpace(string(output))

	repoRootMu.Lock()
	repoRootCache = root
	repoRootCacheDir = cwd
	repoRootMu.Unlock()

	return root, nil
}

// ResetRepoRootCache clears the cached repository root (for testing).
func ResetRepoRootCache() {
	repoRootMu.Lock()
	repoRootCache = ""
	repoRootCacheDir = ""
	repoRootMu.Unlock()
}

// AbsPath resolves a repo-relative path against the repository root.
// This makes commands work correctly from any subdirectory.
func AbsPath(rel string) (string, error) {
	root, err := RepoRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, rel), nil
}

// Initialized reports whether the hidden state directory exists at the
// repository root.
func Initialized() bool {
	dir, err := AbsPath(VigilDir)
	if err != nil {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
