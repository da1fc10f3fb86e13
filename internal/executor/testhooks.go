package executor

import (
	"context"
	"os"
	"os/exec"

	ilogger "blacktask/internal/logger"
)

func SetForceKillDelay(seconds int32) (restore func()) {
	prev := forceKillDelay.Load()
	forceKillDelay.Store(seconds)
	return func() { forceKillDelay.Store(prev) }
}

func SetCommandContextFn(fn func(context.Context, string, ...string) *exec.Cmd) (restore func()) {
	prev := commandContext
	if fn == nil {
		fn = exec.CommandContext
	}
	commandContext = fn
	return func() { commandContext = prev }
}

func SetNewTaskLoggerFn(fn func(string) (*ilogger.Logger, error)) (restore func()) {
	prev := newTaskLoggerFn
	if fn == nil {
		fn = ilogger.NewLoggerWithSuffix
	}
	newTaskLoggerFn = fn
	return func() { newTaskLoggerFn = prev }
}

func SetEnvironFn(fn func() []string) (restore func()) {
	prev := environFn
	if fn == nil {
		fn = os.Environ
	}
	environFn = fn
	return func() { environFn = prev }
}
