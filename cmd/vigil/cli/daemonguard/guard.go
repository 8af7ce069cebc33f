// Package daemonguard encapsulates the single-instance guard for the watch
// scheduler: the "is an instance already live" check and the "record this
// instance" write, backed by a PID file in the hidden state directory.
//
// The guard is advisory only. A racing start between the liveness check and
// the PID write is an accepted, narrow risk window; it is not a true lock.
package daemonguard

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ErrSpawn is returned when the daemon process cannot be started or its
// PID cannot be recorded.
var ErrSpawn = errors.New("cannot spawn daemon process")

// Guard manages the scheduler's PID file.
type Guard struct {
	path string
}

// New returns a guard over the PID file at path.
func New(path string) *Guard {
	return &Guard{path: path}
}

// PID reads the recorded process id. The second return value is false when
// no PID has been recorded or the file does not parse.
func (g *Guard) PID() (int, bool) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// Alive reports whether the recorded process still exists.
func (g *Guard) Alive() bool {
	pid, ok := g.PID()
	if !ok {
		return false
	}
	return processAlive(pid)
}

// Record writes pid to the PID file as decimal text.
func (g *Guard) Record(pid int) error {
	if err := os.WriteFile(g.path, []byte(strconv.Itoa(pid)), 0o600); err != nil {
		return fmt.Errorf("%w: recording PID: %w", ErrSpawn, err)
	}
	return nil
}

// Clear removes the PID file. Missing files are not an error.
func (g *Guard) Clear() error {
	err := os.Remove(g.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing PID file: %w", err)
	}
	return nil
}

// Spawn starts this executable again with the given arguments as a detached
// process rooted at dir, records its PID, and returns it.
func (g *Guard) Spawn(dir string, args ...string) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("%w: locating executable: %w", ErrSpawn, err)
	}

	cmd := exec.Command(exe, args...) //nolint:gosec // Re-executing ourselves
	cmd.Dir = dir
	cmd.SysProcAttr = detachSysProcAttr()

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("%w: starting %s: %w", ErrSpawn, exe, err)
	}

	pid := cmd.Process.Pid
	if err := g.Record(pid); err != nil {
		return 0, err
	}

	// Detach: the child outlives us and is reaped by the system.
	_ = cmd.Process.Release()
	return pid, nil
}
