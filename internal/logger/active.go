package logger

import (
	"context"
	"sync/atomic"
)

var active atomic.Pointer[Logger]

type taskLoggerKey struct{}

func SetLogger(l *Logger) { active.Store(l) }

// CloseLogger detaches and closes the active logger.
func CloseLogger() error {
	l := active.Swap(nil)
	if l == nil {
		return nil
	}
	return l.Close()
}

func ActiveLogger() *Logger { return active.Load() }

// WithTaskLogger returns a context whose task-scoped logger is l.
func WithTaskLogger(ctx context.Context, l *Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, taskLoggerKey{}, l)
}

// FromContext returns the task logger stored in ctx, falling back to the
// active logger.
func FromContext(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(taskLoggerKey{}).(*Logger); ok && l != nil {
			return l
		}
	}
	return ActiveLogger()
}

func logWarn(msg string) {
	if l := ActiveLogger(); l != nil {
		l.Warn(msg)
	}
}

func LogDebug(msg string) {
	if l := ActiveLogger(); l != nil {
		l.Debug(msg)
	}
}

func LogInfo(msg string) {
	if l := ActiveLogger(); l != nil {
		l.Info(msg)
	}
}

func LogWarn(msg string) { logWarn(msg) }

func LogError(msg string) {
	if l := ActiveLogger(); l != nil {
		l.Error(msg)
	}
}
