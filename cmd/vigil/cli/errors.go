package cli

import "errors"

// Sentinel errors for command preconditions.
var (
	// ErrNotInitialized is returned when a command needs the hidden state
	// directory but `vigil init` has not been run.
	ErrNotInitialized = errors.New("vigil is not initialized (run `vigil init`)")

	// ErrNotAProjectRoot is returned when init runs outside the root of a
	// git repository.
	ErrNotAProjectRoot = errors.New("vigil must be initialized at the root of a git repository")
)

// SilentError wraps an error whose message has already been printed to the
// user. main exits non-zero without printing it again.
type SilentError struct {
	Err error
}

// NewSilentError wraps err as a SilentError.
func NewSilentError(err error) *SilentError {
	return &SilentError{Err: err}
}

func (e *SilentError) Error() string {
	return e.Err.Error()
}

func (e *SilentError) Unwrap() error {
	return e.Err
}
