// Package black registers the black formatter tasks of a project.
package black

import (
	"errors"
	"fmt"

	config "blacktask/internal/config"
	formatter "blacktask/internal/formatter"
	task "blacktask/internal/task"
)

const (
	CheckTaskName  = "blackCheck"
	FormatTaskName = "blackFormat"

	LintGroup   = "lint"
	FormatGroup = "fmt"
)

var ErrNoProject = errors.New("black: project is required")

// Tasks holds the handles returned by Register for further configuration.
type Tasks struct {
	Check  *task.Task
	Format *task.Task
}

// Register creates the check task, grouped under "lint", and the format task,
// grouped under "fmt". Both start from the default config with opts applied.
// The format task is not enabled by default and always has CheckOnly forced
// on.
func Register(p *task.Project, opts config.Options) (Tasks, error) {
	if p == nil {
		return Tasks{}, ErrNoProject
	}

	checkCfg := config.DefaultTaskConfig()
	opts.Apply(&checkCfg)
	check, err := p.Do(CheckTaskName, LintGroup, true, formatter.Black{}, checkCfg)
	if err != nil {
		return Tasks{}, fmt.Errorf("register %s: %w", CheckTaskName, err)
	}

	formatCfg := config.DefaultTaskConfig()
	opts.Apply(&formatCfg)
	formatCfg.CheckOnly = true
	format, err := p.Do(FormatTaskName, FormatGroup, false, formatter.Black{}, formatCfg)
	if err != nil {
		return Tasks{Check: check}, fmt.Errorf("register %s: %w", FormatTaskName, err)
	}

	return Tasks{Check: check, Format: format}, nil
}
