// Package watcher implements the reconciliation engine: it keeps a shadow
// ref in sync with the checked-out commit, snapshots the working directory
// into content-addressed trees, and chains checkpoint commits onto the
// shadow ref whenever the tree changes.
//
// The shadow ref lives in a dedicated namespace (refs/vigil/head) and is
// never read or written by anything else. The user's branch, index and
// commit log are never touched.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vigilhq/cli/cmd/vigil/cli/logging"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ShadowRefName is the dedicated reference marking the tip of the
// checkpoint history.
const ShadowRefName = "refs/vigil/head"

// Fixed identity and marker message for checkpoint commits. Checkpoints are
// system-authored so they are distinguishable from the user's own commits.
const (
	CommitAuthorName  = "vigil"
	CommitAuthorEmail = "daemon@vigil.dev"
	CommitMessage     = "vigil checkpoint"
)

var shadowRef = plumbing.ReferenceName(ShadowRefName)

// Watcher drives checkpoint reconciliation against a single repository.
// It is not safe for concurrent use; the scheduler runs cycles sequentially.
type Watcher struct {
	repo *git.Repository
}

// Open opens the repository containing path (searching parent directories
// for the .git directory) and returns a Watcher over it.
func Open(path string) (*Watcher, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return New(repo), nil
}

// New returns a Watcher over an already-open repository.
func New(repo *git.Repository) *Watcher {
	return &Watcher{repo: repo}
}

// ShadowHead returns the shadow ref's target commit.
// The second return value is false when the ref does not exist yet.
func (w *Watcher) ShadowHead() (plumbing.Hash, bool, error) {
	ref, err := w.repo.Reference(shadowRef, true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return plumbing.ZeroHash, false, nil
		}
		return plumbing.ZeroHash, false, fmt.Errorf("%w: resolving %s: %w", ErrRefResolution, ShadowRefName, err)
	}
	return ref.Hash(), true, nil
}

// head resolves the checked-out commit.
func (w *Watcher) head() (plumbing.Hash, error) {
	ref, err := w.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: resolving HEAD: %w", ErrRefResolution, err)
	}
	return ref.Hash(), nil
}

// consistent reports whether the checked-out commit is still reachable from
// the shadow commit: the merge-base of the two must be HEAD itself. A shadow
// commit that cannot be loaded, or that shares no history with HEAD, counts
// as stale rather than an error.
func (w *Watcher) consistent(shadow plumbing.Hash) (bool, error) {
	headHash, err := w.head()
	if err != nil {
		return false, err
	}

	shadowCommit, err := w.repo.CommitObject(shadow)
	if err != nil {
		return false, nil //nolint:nilerr // Dangling shadow ref is stale, not fatal
	}
	headCommit, err := w.repo.CommitObject(headHash)
	if err != nil {
		return false, fmt.Errorf("%w: loading HEAD commit: %w", ErrRefResolution, err)
	}

	bases, err := shadowCommit.MergeBase(headCommit)
	if err != nil {
		return false, nil //nolint:nilerr // Unrelated histories have no merge-base
	}
	for _, base := range bases {
		if base.Hash == headHash {
			return true, nil
		}
	}
	return false, nil
}

// ResetShadow repoints the shadow ref (creating it if absent) at the
// checked-out commit and returns that commit. The prior checkpoint lineage
// becomes unreachable from the new pointer.
func (w *Watcher) ResetShadow() (plumbing.Hash, error) {
	headHash, err := w.head()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	ref := plumbing.NewHashReference(shadowRef, headHash)
	if err := w.repo.Storer.SetReference(ref); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: updating %s: %w", ErrObjectStore, ShadowRefName, err)
	}
	return headHash, nil
}

// ReconcileOnce compares the candidate tree against the shadow commit's tree
// and, when they differ, records a new checkpoint commit with the shadow
// commit as sole parent and advances the shadow ref to it.
//
// A zero candidate tree (empty working directory) and an identical tree are
// both no-ops, so repeated reconciliation is idempotent. The ref only moves
// after the commit object has been durably written.
func (w *Watcher) ReconcileOnce(shadow, candidateTree plumbing.Hash) (plumbing.Hash, bool, error) {
	if candidateTree.IsZero() {
		return plumbing.ZeroHash, false, nil
	}

	parent, err := w.repo.CommitObject(shadow)
	if err != nil {
		return plumbing.ZeroHash, false, fmt.Errorf("%w: loading shadow commit %s: %w", ErrObjectStore, shadow, err)
	}
	if parent.TreeHash == candidateTree {
		return plumbing.ZeroHash, false, nil
	}

	commitHash, err := w.createCommit(candidateTree, shadow)
	if err != nil {
		return plumbing.ZeroHash, false, err
	}

	ref := plumbing.NewHashReference(shadowRef, commitHash)
	if err := w.repo.Storer.SetReference(ref); err != nil {
		return plumbing.ZeroHash, false, fmt.Errorf("%w: advancing %s: %w", ErrObjectStore, ShadowRefName, err)
	}
	return commitHash, true, nil
}

// createCommit encodes and stores a checkpoint commit object.
func (w *Watcher) createCommit(treeHash, parentHash plumbing.Hash) (plumbing.Hash, error) {
	sig := object.Signature{
		Name:  CommitAuthorName,
		Email: CommitAuthorEmail,
		When:  time.Now(),
	}

	commit := &object.Commit{
		TreeHash:     treeHash,
		ParentHashes: []plumbing.Hash{parentHash},
		Author:       sig,
		Committer:    sig,
		Message:      CommitMessage,
	}

	obj := w.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: encoding commit: %w", ErrObjectStore, err)
	}

	hash, err := w.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: storing commit: %w", ErrObjectStore, err)
	}
	return hash, nil
}

// RunCycle performs one full reconciliation pass:
// resolve the shadow ref, repair it if stale, snapshot the working
// directory, and commit the snapshot when it differs from the shadow tree.
// No state persists across cycles beyond the ref and durable objects.
func (w *Watcher) RunCycle(ctx context.Context) error {
	shadow, ok, err := w.ShadowHead()
	if err != nil {
		return err
	}

	if ok {
		ok, err = w.consistent(shadow)
		if err != nil {
			return err
		}
	}
	if !ok {
		shadow, err = w.ResetShadow()
		if err != nil {
			return err
		}
		logging.Info(ctx, "shadow ref reset to checked-out commit",
			slog.String("commit", shadow.String()),
		)
	}

	tree, err := w.Snapshot()
	if err != nil {
		return err
	}
	if tree.IsZero() {
		logging.Debug(ctx, "no trackable files, skipping checkpoint")
		return nil
	}

	commit, created, err := w.ReconcileOnce(shadow, tree)
	if err != nil {
		return err
	}
	if created {
		logging.Info(ctx, "checkpoint recorded",
			slog.String("commit", commit.String()),
			slog.String("tree", tree.String()),
		)
	} else {
		logging.Debug(ctx, "working directory unchanged")
	}
	return nil
}
