//go:build !unix

package executor

// sendTermSignal kills the process where SIGTERM cannot be delivered.
func sendTermSignal(proc processHandle) error {
	if proc == nil {
		return nil
	}
	return proc.Kill()
}
