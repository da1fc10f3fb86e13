package task

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTask   = errors.New("invalid task")
	ErrDuplicateTask = errors.New("duplicate task")
	ErrUnknownTarget = errors.New("unknown task or group")
)

// Error wraps task registration and selection failures.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
