package watcher

import "errors"

// Errors returned by reconciliation operations. Callers match with errors.Is;
// the wrapped cause carries the detail.
var (
	// ErrRefResolution is returned when the checked-out commit or the shadow
	// pointer cannot be resolved (e.g. an unborn branch with no commits yet).
	ErrRefResolution = errors.New("cannot resolve reference")

	// ErrObjectStore is returned when staging, tree-write, commit-write or
	// ref-update operations fail in the underlying object store.
	ErrObjectStore = errors.New("object store failure")
)
