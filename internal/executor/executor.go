package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	ilogger "blacktask/internal/logger"
	task "blacktask/internal/task"
	utils "blacktask/internal/utils"

	"github.com/google/uuid"
)

const (
	outputTailLimit = 4 << 10
	logLineLimit    = 1000

	ExitCodeFailure   = 1
	ExitCodeTimeout   = 124
	ExitCodeNotFound  = 127
	ExitCodeCancelled = 130
)

type processHandle interface {
	Signal(os.Signal) error
	Kill() error
}

var (
	// forceKillDelay is how long, in seconds, a signalled process may take to
	// exit before it is killed.
	forceKillDelay atomic.Int32

	commandContext   = exec.CommandContext
	newTaskLoggerFn  = ilogger.NewLoggerWithSuffix
	newRunID         = func() string { return uuid.NewString() }
	environFn        = os.Environ
	resolveCommandFn = lookPathIn
)

func init() {
	forceKillDelay.Store(5)
}

// Run builds t's command once and executes it as an external process.
func Run(ctx context.Context, t *task.Task, opts RunOptions) (result TaskResult) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	result = TaskResult{RunID: newRunID()}
	if t == nil {
		result.ExitCode = ExitCodeFailure
		result.Error = "no task to run"
		return result
	}
	result.Task = t.Name
	result.Group = t.Group

	log := ilogger.FromContext(ctx)
	logf := func(level func(*ilogger.Logger, string), format string, args ...any) {
		if log != nil {
			level(log, fmt.Sprintf(format, args...))
		}
	}

	argv := t.Command()
	result.Command = argv
	defer func() {
		result.Duration = time.Since(start)
		result.DurationMs = result.Duration.Milliseconds()
	}()

	env := activateEnv(environFn(), opts.VirtualEnv, opts.Env)
	binary, ok := resolveCommandFn(argv[0], lookupEnv(env, "PATH"))
	if !ok {
		result.ExitCode = ExitCodeNotFound
		result.Error = fmt.Sprintf("%s not found in PATH", argv[0])
		logf((*ilogger.Logger).Error, "[%s] %s", t.Name, result.Error)
		return result
	}

	runCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	prefix := "[" + t.Name + "] "
	lineLog := newLogWriter(prefix, logLineLimit, func(line string) {
		if log != nil {
			log.Info(line)
		}
	})
	tail := &tailBuffer{limit: outputTailLimit}
	writers := []io.Writer{lineLog, tail}
	if opts.Output != nil {
		writers = append(writers, opts.Output)
	}
	sink := io.MultiWriter(writers...)

	cmd := commandContext(runCtx, binary, argv[1:]...)
	cmd.Dir = opts.Dir
	cmd.Env = env
	cmd.Stdout = sink
	cmd.Stderr = sink
	cmd.Cancel = func() error { return sendTermSignal(cmd.Process) }
	cmd.WaitDelay = time.Duration(forceKillDelay.Load()) * time.Second

	logf((*ilogger.Logger).Info, "%srunning: %s", prefix, strings.Join(argv, " "))
	err := cmd.Run()
	lineLog.Flush()
	result.Output = utils.SanitizeOutput(tail.String())

	switch {
	case err == nil:
		result.ExitCode = 0
	case ctx.Err() != nil:
		result.ExitCode = ExitCodeCancelled
		result.Error = "cancelled"
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		result.ExitCode = ExitCodeTimeout
		result.Error = fmt.Sprintf("timed out after %s", opts.Timeout)
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			result.ExitCode = exitErr.ExitCode()
			result.Error = fmt.Sprintf("%s exited with code %d", argv[0], result.ExitCode)
		} else if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			result.ExitCode = ExitCodeNotFound
			result.Error = fmt.Sprintf("%s not found in PATH", argv[0])
		} else {
			result.ExitCode = ExitCodeFailure
			result.Error = err.Error()
		}
	}

	if result.ExitCode == 0 {
		logf((*ilogger.Logger).Info, "%sfinished in %s", prefix, time.Since(start).Round(time.Millisecond))
	} else {
		logf((*ilogger.Logger).Error, "%s%s", prefix, result.Error)
	}
	return result
}

// RunAll runs tasks one after another. Once ctx is done no further task is
// started and the rest are reported as cancelled.
func RunAll(ctx context.Context, tasks []*task.Task, opts RunOptions) []TaskResult {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]TaskResult, 0, len(tasks))
	for _, t := range tasks {
		if ctx.Err() != nil {
			results = append(results, TaskResult{
				RunID:    newRunID(),
				Task:     t.Name,
				Group:    t.Group,
				Command:  t.Command(),
				ExitCode: ExitCodeCancelled,
				Error:    "cancelled before start",
			})
			continue
		}
		results = append(results, runWithTaskLog(ctx, t, opts))
	}
	return results
}

func runWithTaskLog(ctx context.Context, t *task.Task, opts RunOptions) TaskResult {
	if !opts.TaskLogs {
		return Run(ctx, t, opts)
	}

	taskLog, err := newTaskLoggerFn(t.Name)
	if err != nil {
		ilogger.LogWarn(fmt.Sprintf("task log for %s unavailable: %v", t.Name, err))
		return Run(ctx, t, opts)
	}

	result := Run(ilogger.WithTaskLogger(ctx, taskLog), t, opts)
	if err := taskLog.Close(); err != nil {
		ilogger.LogWarn(fmt.Sprintf("close task log %s: %v", taskLog.Path(), err))
	}
	if result.Succeeded() {
		_ = taskLog.RemoveLogFile()
		return result
	}
	result.LogPath = taskLog.Path()
	return result
}

// ExitCode returns the exit code of the last failed result, or 0.
func ExitCode(results []TaskResult) int {
	code := 0
	for _, r := range results {
		if r.ExitCode != 0 {
			code = r.ExitCode
		} else if r.Error != "" {
			code = ExitCodeFailure
		}
	}
	return code
}
