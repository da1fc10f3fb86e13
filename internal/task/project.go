package task

import (
	"strings"

	config "blacktask/internal/config"
	formatter "blacktask/internal/formatter"
)

// Project is an ordered registry of tasks sharing one directory and one set
// of settings. It is not safe for concurrent registration.
type Project struct {
	Dir      string
	Settings Settings

	tasks  []*Task
	byName map[string]*Task
}

func NewProject(dir string, settings Settings) *Project {
	return &Project{
		Dir:      dir,
		Settings: settings,
		byName:   make(map[string]*Task),
	}
}

// Do registers a task running f with cfg. Names must be non-empty and unique
// within the project.
func (p *Project) Do(name, group string, isDefault bool, f formatter.Formatter, cfg config.TaskConfig) (*Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errorf(ErrInvalidTask, "task name is required")
	}
	if f == nil {
		return nil, errorf(ErrInvalidTask, "task %q has no formatter", name)
	}
	if _, exists := p.byName[name]; exists {
		return nil, errorf(ErrDuplicateTask, "%q", name)
	}

	owned := cfg.Clone()
	t := &Task{
		Name:      name,
		Group:     strings.TrimSpace(group),
		Default:   isDefault,
		Config:    &owned,
		formatter: f,
		settings:  p.Settings,
	}
	if p.byName == nil {
		p.byName = make(map[string]*Task)
	}
	p.byName[name] = t
	p.tasks = append(p.tasks, t)
	return t, nil
}

// Tasks returns the registered tasks in registration order.
func (p *Project) Tasks() []*Task {
	return append([]*Task(nil), p.tasks...)
}

func (p *Project) Task(name string) (*Task, bool) {
	t, ok := p.byName[name]
	return t, ok
}

// Group returns the tasks of a group in registration order.
func (p *Project) Group(name string) []*Task {
	var out []*Task
	for _, t := range p.tasks {
		if t.Group == name {
			out = append(out, t)
		}
	}
	return out
}

// Select resolves targets to tasks. With no targets every default task is
// selected. A target matches a task name first, then a group name.
func (p *Project) Select(targets ...string) ([]*Task, error) {
	if len(targets) == 0 {
		var out []*Task
		for _, t := range p.tasks {
			if t.Default {
				out = append(out, t)
			}
		}
		return out, nil
	}

	picked := make(map[*Task]struct{})
	for _, target := range targets {
		target = strings.TrimSpace(target)
		if t, ok := p.byName[target]; ok {
			picked[t] = struct{}{}
			continue
		}
		group := p.Group(target)
		if target == "" || len(group) == 0 {
			return nil, errorf(ErrUnknownTarget, "%q", target)
		}
		for _, t := range group {
			picked[t] = struct{}{}
		}
	}

	out := make([]*Task, 0, len(picked))
	for _, t := range p.tasks {
		if _, ok := picked[t]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}
