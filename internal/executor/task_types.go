package executor

import (
	"io"
	"time"
)

// RunOptions controls how a task's command is dispatched.
type RunOptions struct {
	// Dir is the working directory; empty means the current directory.
	Dir string
	// VirtualEnv, when set, is activated for the child process.
	VirtualEnv string
	// Env holds extra variables layered over the activated environment.
	Env map[string]string
	// Timeout of 0 disables the timeout.
	Timeout time.Duration
	// Output receives the child's stdout and stderr when non-nil.
	Output io.Writer
	// TaskLogs gives each task its own log file, kept only on failure.
	TaskLogs bool
}

// TaskResult captures the execution outcome of a task.
type TaskResult struct {
	RunID      string        `json:"run_id"`
	Task       string        `json:"task"`
	Group      string        `json:"group"`
	Command    []string      `json:"command"`
	ExitCode   int           `json:"exit_code"`
	Error      string        `json:"error,omitempty"`
	Output     string        `json:"output,omitempty"` // sanitized tail of stdout/stderr
	DurationMs int64         `json:"duration_ms"`
	Duration   time.Duration `json:"-"`
	LogPath    string        `json:"log_path,omitempty"`
}

func (r TaskResult) Succeeded() bool { return r.ExitCode == 0 && r.Error == "" }
