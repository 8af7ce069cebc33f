package paths

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// initGitRepo creates a git repo in dir and moves the test into it.
func initGitRepo(t *testing.T, dir string) {
	t.Helper()
	t.Chdir(dir)
	ResetRepoRootCache()
	t.Cleanup(ResetRepoRootCache)

	cmd := exec.CommandContext(context.Background(), "git", "init")
	cmd.Dir = dir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git init failed: %v\nOutput: %s", err, output)
	}
}

func TestRepoRoot_FromRoot(t *testing.T) {
	dir := t.TempDir()
	initGitRepo(t, dir)

	root, err := RepoRoot()
	if err != nil {
		t.Fatalf("RepoRoot() error = %v", err)
	}

	// Resolve symlinks: on some systems TempDir is behind a symlink.
	wantRoot, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}
	gotRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		t.Fatalf("failed to resolve repo root: %v", err)
	}
	if gotRoot != wantRoot {
		t.Errorf("RepoRoot() = %s, want %s", gotRoot, wantRoot)
	}
}

func TestRepoRoot_FromSubdirectory(t *testing.T) {
	dir := t.TempDir()
	initGitRepo(t, dir)

	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("failed to create subdirectory: %v", err)
	}
	t.Chdir(sub)
	ResetRepoRootCache()

	root, err := RepoRoot()
	if err != nil {
		t.Fatalf("RepoRoot() from subdirectory error = %v", err)
	}

	wantRoot, _ := filepath.EvalSymlinks(dir)
	gotRoot, _ := filepath.EvalSymlinks(root)
	if gotRoot != wantRoot {
		t.Errorf("RepoRoot() = %s, want repository root %s", gotRoot, wantRoot)
	}
}

func TestRepoRoot_OutsideRepository(t *testing.T) {
	t.Chdir(t.TempDir())
	ResetRepoRootCache()
	t.Cleanup(ResetRepoRootCache)

	if root, err := RepoRoot(); err == nil {
		t.Errorf("RepoRoot() = %s, want error outside a repository", root)
	}
}

func TestAbsPath(t *testing.T) {
	dir := t.TempDir()
	initGitRepo(t, dir)

	got, err := AbsPath(PIDFile)
	if err != nil {
		t.Fatalf("AbsPath() error = %v", err)
	}
	if filepath.Base(got) != "daemon.pid" {
		t.Errorf("AbsPath(%q) = %s, want a path ending in daemon.pid", PIDFile, got)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("AbsPath(%q) = %s, want an absolute path", PIDFile, got)
	}
}

func TestInitialized(t *testing.T) {
	dir := t.TempDir()
	initGitRepo(t, dir)

	if Initialized() {
		t.Error("Initialized() = true before the state directory exists")
	}

	if err := os.MkdirAll(filepath.Join(dir, VigilDir), 0o755); err != nil {
		t.Fatalf("failed to create state dir: %v", err)
	}
	if !Initialized() {
		t.Error("Initialized() = false after creating the state directory")
	}
}

func TestInitialized_FileNotDirectory(t *testing.T) {
	dir := t.TempDir()
	initGitRepo(t, dir)

	if err := os.WriteFile(filepath.Join(dir, VigilDir), []byte("x"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if Initialized() {
		t.Error("Initialized() = true for a plain file in place of the state directory")
	}
}
