package watcher

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Directories excluded from every snapshot. The hidden state directory must
// never end up inside a checkpoint, and nested .git directories (submodules)
// are not trackable content.
const (
	gitDir   = ".git"
	vigilDir = ".vigil"
)

// stagingArea is the ephemeral staging structure used to compute one
// snapshot tree. It stages blobs into the object store and keeps the
// path-to-entry map in memory; it is cleared after every use and is
// entirely separate from the repository's real index.
type stagingArea struct {
	watcher *Watcher
	fs      billy.Filesystem
	matcher gitignore.Matcher
	entries map[string]object.TreeEntry
}

// openStaging opens a fresh staging area over the worktree filesystem,
// loading the repository's ignore patterns.
func (w *Watcher) openStaging() (*stagingArea, error) {
	wt, err := w.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%w: opening worktree: %w", ErrObjectStore, err)
	}

	patterns, err := gitignore.ReadPatterns(wt.Filesystem, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: reading ignore patterns: %w", ErrObjectStore, err)
	}

	return &stagingArea{
		watcher: w,
		fs:      wt.Filesystem,
		matcher: gitignore.NewMatcher(patterns),
		entries: make(map[string]object.TreeEntry),
	}, nil
}

// Snapshot builds a content-addressed tree of all trackable files in the
// working directory. Returns the zero hash when nothing is trackable (no
// checkpoint should be attempted). The staging area is discarded before
// returning, so the next cycle starts clean.
func (w *Watcher) Snapshot() (plumbing.Hash, error) {
	staging, err := w.openStaging()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	defer staging.clear()

	if err := staging.addAll(); err != nil {
		return plumbing.ZeroHash, err
	}
	if staging.empty() {
		return plumbing.ZeroHash, nil
	}
	return staging.writeTree()
}

// addAll stages every trackable file under the worktree root.
func (s *stagingArea) addAll() error {
	return s.addDir("")
}

// addDir recursively stages the contents of one directory. dir is a
// slash-separated path relative to the worktree root ("" for the root).
func (s *stagingArea) addDir(dir string) error {
	fsDir := dir
	if fsDir == "" {
		fsDir = "."
	}
	infos, err := s.fs.ReadDir(fsDir)
	if err != nil {
		return fmt.Errorf("%w: reading directory %s: %w", ErrObjectStore, fsDir, err)
	}

	for _, info := range infos {
		rel := path.Join(dir, info.Name())
		if s.excluded(rel, info.Name()) {
			continue
		}

		// Classify via Lstat so symlinks are staged as links, not targets.
		linfo, err := s.fs.Lstat(rel)
		if err != nil {
			continue // File vanished between listing and stat
		}

		isDir := linfo.IsDir()
		if s.matcher.Match(strings.Split(rel, "/"), isDir) {
			continue
		}

		if isDir {
			if err := s.addDir(rel); err != nil {
				return err
			}
			continue
		}

		if err := s.stageFile(rel, linfo); err != nil {
			return err
		}
	}
	return nil
}

// excluded reports whether a path is categorically outside snapshots.
func (s *stagingArea) excluded(rel, name string) bool {
	if name == gitDir {
		return true
	}
	return rel == vigilDir
}

// stageFile writes the file's bytes as a blob and records its tree entry.
func (s *stagingArea) stageFile(rel string, info os.FileInfo) error {
	mode := filemode.Regular
	var content []byte

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := s.fs.Readlink(rel)
		if err != nil {
			return nil //nolint:nilerr // Unreadable link, skip it
		}
		mode = filemode.Symlink
		content = []byte(target)
	} else {
		if info.Mode()&0o111 != 0 {
			mode = filemode.Executable
		}
		f, err := s.fs.Open(rel)
		if err != nil {
			return nil //nolint:nilerr // File vanished or unreadable, skip it
		}
		content, err = io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("%w: reading %s: %w", ErrObjectStore, rel, err)
		}
	}

	hash, err := writeBlob(s.watcher.repo, content)
	if err != nil {
		return err
	}
	s.entries[rel] = object.TreeEntry{
		Name: rel,
		Mode: mode,
		Hash: hash,
	}
	return nil
}

// empty reports whether nothing was staged.
func (s *stagingArea) empty() bool {
	return len(s.entries) == 0
}

// writeTree writes the staged set out as a tree object.
func (s *stagingArea) writeTree() (plumbing.Hash, error) {
	return buildTreeFromEntries(s.watcher.repo, s.entries)
}

// clear drops all staged entries so no state leaks into the next cycle.
func (s *stagingArea) clear() {
	s.entries = make(map[string]object.TreeEntry)
}
