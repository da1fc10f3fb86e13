package config

import "strings"

// DefaultSourceDirectory is the positional target used when no source
// directories are configured.
const DefaultSourceDirectory = "src"

// TaskConfig is the configuration bound to a single formatter task.
type TaskConfig struct {
	CheckOnly         bool
	ConfigFile        *string // nil means unset
	SourceDirectories []string
	AdditionalArgs    []string
}

// DefaultTaskConfig returns a fresh TaskConfig. The returned slices are never
// shared between calls.
func DefaultTaskConfig() TaskConfig {
	return TaskConfig{
		SourceDirectories: []string{DefaultSourceDirectory},
		AdditionalArgs:    []string{},
	}
}

// ConfigFileFilled reports whether a config file has been set.
func (c *TaskConfig) ConfigFileFilled() bool {
	return c != nil && c.ConfigFile != nil
}

// Clone returns a deep copy of c.
func (c TaskConfig) Clone() TaskConfig {
	out := TaskConfig{CheckOnly: c.CheckOnly}
	if c.ConfigFile != nil {
		out.ConfigFile = String(*c.ConfigFile)
	}
	out.SourceDirectories = append([]string{}, c.SourceDirectories...)
	out.AdditionalArgs = append([]string{}, c.AdditionalArgs...)
	return out
}

// Options lists the overrides callers may pass when registering formatter
// tasks. A nil field leaves the corresponding default untouched.
type Options struct {
	CheckOnly         *bool
	ConfigFile        *string // pointer to "" clears a configured file
	SourceDirectories []string
	AdditionalArgs    []string
}

// Apply merges the set fields of o into cfg.
func (o Options) Apply(cfg *TaskConfig) {
	if cfg == nil {
		return
	}
	if o.CheckOnly != nil {
		cfg.CheckOnly = *o.CheckOnly
	}
	if o.ConfigFile != nil {
		if *o.ConfigFile != "" {
			cfg.ConfigFile = String(*o.ConfigFile)
		} else {
			cfg.ConfigFile = nil
		}
	}
	if o.SourceDirectories != nil {
		cfg.SourceDirectories = append([]string{}, o.SourceDirectories...)
	}
	if o.AdditionalArgs != nil {
		cfg.AdditionalArgs = append([]string{}, o.AdditionalArgs...)
	}
}

func Bool(v bool) *bool { return &v }

func String(v string) *string { return &v }

func ParseBoolFlag(val string, defaultValue bool) bool {
	val = strings.TrimSpace(strings.ToLower(val))
	switch val {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}
