//go:build unix

package executor

import "syscall"

// sendTermSignal asks the process to shut down gracefully.
func sendTermSignal(proc processHandle) error {
	if proc == nil {
		return nil
	}
	return proc.Signal(syscall.SIGTERM)
}
