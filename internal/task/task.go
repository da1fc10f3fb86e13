package task

import (
	config "blacktask/internal/config"
	formatter "blacktask/internal/formatter"
)

// Settings supplies project-wide values shared by every task of a project.
type Settings interface {
	TestsDirectoryArgs() []string
}

// Task is a named, grouped unit of work whose command is built from its
// config at execution time.
type Task struct {
	Name    string
	Group   string
	Default bool
	Config  *config.TaskConfig

	formatter formatter.Formatter
	settings  Settings
}

// Command builds the command line for the task from its current config.
func (t *Task) Command() []string {
	var testArgs []string
	if t.settings != nil {
		testArgs = t.settings.TestsDirectoryArgs()
	}
	return formatter.BuildCommand(t.formatter, t.Config, testArgs)
}

// Tool returns the executable the task dispatches to.
func (t *Task) Tool() string {
	return t.formatter.Command()
}
