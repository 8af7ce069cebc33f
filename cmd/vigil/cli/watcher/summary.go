package watcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/vigilhq/cli/redact"

	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultSummarizeLimit bounds the history walk when no limit is given.
const DefaultSummarizeLimit = 10

// SummarizeOptions configures history rendering.
type SummarizeOptions struct {
	// Limit is the maximum number of checkpoints to walk back through.
	Limit int

	// Redact pipes the rendered output through the secret redactor
	// before writing it.
	Redact bool
}

// Summarize walks the checkpoint chain backward from the shadow ref,
// rendering each commit id and a line-classified diff against its parent.
// Commits with more than one parent follow the second parent, which is the
// post-reset lineage. Purely read-only.
func (w *Watcher) Summarize(out io.Writer, opts SummarizeOptions) error {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSummarizeLimit
	}

	if opts.Redact {
		var buf bytes.Buffer
		if err := w.summarize(&buf, limit); err != nil {
			return err
		}
		_, err := out.Write(redact.Bytes(buf.Bytes()))
		return err
	}
	return w.summarize(out, limit)
}

func (w *Watcher) summarize(out io.Writer, limit int) error {
	shadow, ok, err := w.ShadowHead()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "no checkpoint history found, run `vigil init` and `vigil watch` first")
		return nil
	}

	commit, err := w.repo.CommitObject(shadow)
	if err != nil {
		return fmt.Errorf("%w: loading shadow commit %s: %w", ErrObjectStore, shadow, err)
	}

	for range limit {
		var parent *object.Commit
		if commit.NumParents() > 1 {
			parent, err = commit.Parent(1)
		} else {
			parent, err = commit.Parent(0)
		}
		if err != nil {
			break // Root of the chain
		}

		fmt.Fprintln(out, commit.Hash)
		if err := w.printDiff(out, parent, commit); err != nil {
			return err
		}
		commit = parent
	}
	return nil
}

// printDiff renders a tree-to-tree diff, prefixing every content line with
// the file's one-letter change classification.
func (w *Watcher) printDiff(out io.Writer, parent, commit *object.Commit) error {
	parentTree, err := parent.Tree()
	if err != nil {
		return fmt.Errorf("%w: loading parent tree: %w", ErrObjectStore, err)
	}
	commitTree, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("%w: loading commit tree: %w", ErrObjectStore, err)
	}

	changes, err := object.DiffTreeWithOptions(context.Background(), parentTree, commitTree, object.DefaultDiffTreeOptions)
	if err != nil {
		return fmt.Errorf("%w: diffing trees: %w", ErrObjectStore, err)
	}

	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			continue
		}
		letter, lines := renderChange(change, action)
		for _, line := range lines {
			fmt.Fprintf(out, "%s %s\n", letter, line)
		}
	}
	return nil
}

// renderChange classifies a change and returns its content lines.
// Classifications a tree-to-tree diff can produce: added (+), deleted (-),
// modified (M), renamed (R), type-changed (T), unreadable (X),
// unmodified (space).
func renderChange(change *object.Change, action merkletrie.Action) (string, []string) {
	from, to, err := change.Files()
	if err != nil {
		name := change.To.Name
		if name == "" {
			name = change.From.Name
		}
		return "X", []string{name + " (unreadable)"}
	}

	switch action {
	case merkletrie.Insert:
		return "+", fileLines(to)
	case merkletrie.Delete:
		return "-", fileLines(from)
	case merkletrie.Modify:
		letter := "M"
		switch {
		case change.From.Name != change.To.Name:
			letter = "R"
		case typeChanged(change):
			letter = "T"
		case change.From.TreeEntry.Hash == change.To.TreeEntry.Hash:
			letter = " "
		}
		return letter, changedLines(from, to)
	default:
		return "X", nil
	}
}

// typeChanged reports whether the entry changed kind (regular file vs
// symlink) rather than content.
func typeChanged(change *object.Change) bool {
	fromMode := change.From.TreeEntry.Mode
	toMode := change.To.TreeEntry.Mode
	if fromMode == toMode {
		return false
	}
	return fromMode == filemode.Symlink || toMode == filemode.Symlink
}

// fileLines returns a file's content split into lines, or a placeholder for
// binary or unreadable files.
func fileLines(f *object.File) []string {
	if f == nil {
		return nil
	}
	if binary, err := f.IsBinary(); err != nil || binary {
		return []string{f.Name + " (binary)"}
	}
	content, err := f.Contents()
	if err != nil {
		return []string{f.Name + " (unreadable)"}
	}
	return splitLines(content)
}

// changedLines returns the lines that differ between two file versions.
func changedLines(from, to *object.File) []string {
	fromContent := ""
	toContent := ""
	if from != nil {
		if binary, err := from.IsBinary(); err == nil && !binary {
			fromContent, _ = from.Contents()
		}
	}
	if to != nil {
		if binary, err := to.IsBinary(); err == nil && !binary {
			toContent, _ = to.Contents()
		}
	}
	if fromContent == "" && toContent == "" {
		return []string{to.Name + " (binary)"}
	}

	dmp := diffmatchpatch.New()
	fromRunes, toRunes, lineArray := dmp.DiffLinesToChars(fromContent, toContent)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(fromRunes, toRunes, false), lineArray)

	var lines []string
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			continue
		}
		lines = append(lines, splitLines(d.Text)...)
	}
	return lines
}

// splitLines splits text into lines without trailing newline artifacts.
func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
