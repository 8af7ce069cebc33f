//go:build !windows

package daemonguard

import (
	"os"
	"syscall"
)

// detachSysProcAttr returns the SysProcAttr for detaching the daemon process
// on Unix-like systems.
func detachSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setsid: true,
	}
}

// processAlive reports whether a process with the given pid exists.
// On Unix, FindProcess always succeeds, so signal 0 probes for existence.
func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
