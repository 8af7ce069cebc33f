package watcher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// writeBlob stores content as a blob object and returns its hash.
func writeBlob(repo *git.Repository, content []byte) (plumbing.Hash, error) {
	obj := repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(content)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: getting blob writer: %w", ErrObjectStore, err)
	}
	if _, err = writer.Write(content); err != nil {
		_ = writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("%w: writing blob content: %w", ErrObjectStore, err)
	}
	if err := writer.Close(); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: closing blob writer: %w", ErrObjectStore, err)
	}

	hash, err := repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: storing blob: %w", ErrObjectStore, err)
	}
	return hash, nil
}

// treeNode represents a node in our tree structure.
type treeNode struct {
	entries map[string]*treeNode // subdirectories
	files   []object.TreeEntry   // files in this directory
}

// buildTreeFromEntries builds a proper git tree structure from flattened
// file entries keyed by slash-separated paths.
func buildTreeFromEntries(repo *git.Repository, entries map[string]object.TreeEntry) (plumbing.Hash, error) {
	root := &treeNode{
		entries: make(map[string]*treeNode),
		files:   []object.TreeEntry{},
	}

	for fullPath, entry := range entries {
		parts := strings.Split(fullPath, "/")
		insertIntoTree(root, parts, entry)
	}

	// Recursively build tree objects from bottom up
	return buildTreeObject(repo, root)
}

// insertIntoTree inserts a file entry into the tree structure.
func insertIntoTree(node *treeNode, pathParts []string, entry object.TreeEntry) {
	if len(pathParts) == 1 {
		// This is a file in the current directory
		node.files = append(node.files, object.TreeEntry{
			Name: pathParts[0],
			Mode: entry.Mode,
			Hash: entry.Hash,
		})
		return
	}

	// This is in a subdirectory
	dirName := pathParts[0]
	if node.entries[dirName] == nil {
		node.entries[dirName] = &treeNode{
			entries: make(map[string]*treeNode),
			files:   []object.TreeEntry{},
		}
	}
	insertIntoTree(node.entries[dirName], pathParts[1:], entry)
}

// buildTreeObject recursively builds tree objects from a treeNode.
func buildTreeObject(repo *git.Repository, node *treeNode) (plumbing.Hash, error) {
	var treeEntries []object.TreeEntry

	treeEntries = append(treeEntries, node.files...)

	for name, subnode := range node.entries {
		subHash, err := buildTreeObject(repo, subnode)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		treeEntries = append(treeEntries, object.TreeEntry{
			Name: name,
			Mode: filemode.Dir,
			Hash: subHash,
		})
	}

	// Sort entries (git requires sorted entries)
	sortTreeEntries(treeEntries)

	tree := &object.Tree{Entries: treeEntries}

	obj := repo.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: encoding tree: %w", ErrObjectStore, err)
	}

	hash, err := repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: storing tree: %w", ErrObjectStore, err)
	}
	return hash, nil
}

// sortTreeEntries sorts tree entries in git's required order.
// Git sorts tree entries by name, with directories having a trailing /
func sortTreeEntries(entries []object.TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		nameI := entries[i].Name
		nameJ := entries[j].Name
		if entries[i].Mode == filemode.Dir {
			nameI += "/"
		}
		if entries[j].Mode == filemode.Dir {
			nameJ += "/"
		}
		return nameI < nameJ
	})
}
