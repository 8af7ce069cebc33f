//go:build windows

package daemonguard

import (
	"os"
	"syscall"
)

// detachSysProcAttr returns the SysProcAttr for detaching the daemon process
// on Windows. HideWindow runs the process without a console window.
func detachSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		HideWindow: true,
	}
}

// processAlive reports whether a process with the given pid exists.
// On Windows, FindProcess fails for missing processes.
func processAlive(pid int) bool {
	_, err := os.FindProcess(pid)
	return err == nil
}
