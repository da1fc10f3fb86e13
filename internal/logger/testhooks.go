package logger

import (
	"os"
	"path/filepath"
)

// The Set*Fn hooks replace filesystem and process seams used by log cleanup.
// Passing nil restores the real implementation; the returned func restores
// whatever was installed before.

func SetProcessStateFn(fn func(int) ProcessState) (restore func()) {
	prev := inspectProcessFn
	if fn == nil {
		fn = inspectProcess
	}
	inspectProcessFn = fn
	return func() { inspectProcessFn = prev }
}

func SetRemoveLogFileFn(fn func(string) error) (restore func()) {
	prev := removeLogFileFn
	if fn == nil {
		fn = os.Remove
	}
	removeLogFileFn = fn
	return func() { removeLogFileFn = prev }
}

func SetGlobLogFilesFn(fn func(string) ([]string, error)) (restore func()) {
	prev := globLogFiles
	if fn == nil {
		fn = filepath.Glob
	}
	globLogFiles = fn
	return func() { globLogFiles = prev }
}

func SetFileStatFn(fn func(string) (os.FileInfo, error)) (restore func()) {
	prev := fileStatFn
	if fn == nil {
		fn = os.Lstat
	}
	fileStatFn = fn
	return func() { fileStatFn = prev }
}

func SetEvalSymlinksFn(fn func(string) (string, error)) (restore func()) {
	prev := evalSymlinksFn
	if fn == nil {
		fn = filepath.EvalSymlinks
	}
	evalSymlinksFn = fn
	return func() { evalSymlinksFn = prev }
}
