package logger

import (
	"errors"
	"math"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessState is what cleanup learns about the pid embedded in a log name.
// Started is zero when the creation time could not be read.
type ProcessState struct {
	Alive   bool
	Started time.Time
}

// inspectProcess looks pid up once. Lookup failures other than "not running"
// report the process as alive so a live log is never removed.
func inspectProcess(pid int) ProcessState {
	if pid <= 0 || pid > math.MaxInt32 {
		return ProcessState{}
	}

	proc, err := process.NewProcess(int32(pid))
	if errors.Is(err, process.ErrorProcessNotRunning) {
		return ProcessState{}
	}
	st := ProcessState{Alive: true}
	if err != nil {
		return st
	}
	if ms, err := proc.CreateTime(); err == nil && ms > 0 {
		st.Started = time.UnixMilli(ms)
	}
	return st
}

// ownerGone reports whether the process that wrote the log at path has exited
// or its pid now belongs to a newer process.
func ownerGone(path string, pid int) bool {
	st := inspectProcessFn(pid)
	if !st.Alive {
		return true
	}
	return isPIDReused(path, st.Started)
}

// isPIDReused reports whether the log at path predates a process started at
// started. Without a start time, age alone decides.
func isPIDReused(path string, started time.Time) bool {
	info, err := fileStatFn(path)
	if err != nil {
		return false
	}
	modTime := info.ModTime()
	if started.IsZero() {
		return time.Since(modTime) > stalePIDLogAge
	}
	return started.After(modTime)
}
