package formatter

import config "blacktask/internal/config"

// Formatter defines the contract for invoking an external formatting tool.
// Each formatter supplies the executable name and builds the argument list
// from the task config.
type Formatter interface {
	Name() string
	Command() string
	BuildArgs(cfg *config.TaskConfig, testArgs []string) []string
}

var logDebugFn = func(string) {}

// SetLogFunc configures the optional debug hook used while building commands.
// Callers can safely pass nil to disable the hook.
func SetLogFunc(debugFn func(string)) {
	if debugFn != nil {
		logDebugFn = debugFn
	} else {
		logDebugFn = func(string) {}
	}
}

// BuildCommand returns the full command line, tool name first, for f.
func BuildCommand(f Formatter, cfg *config.TaskConfig, testArgs []string) []string {
	args := f.BuildArgs(cfg, testArgs)
	command := make([]string, 0, len(args)+1)
	command = append(command, f.Command())
	return append(command, args...)
}
