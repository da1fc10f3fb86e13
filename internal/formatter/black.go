package formatter

import (
	"fmt"

	config "blacktask/internal/config"
)

type Black struct{}

func (Black) Name() string    { return "black" }
func (Black) Command() string { return "black" }
func (Black) BuildArgs(cfg *config.TaskConfig, testArgs []string) []string {
	return buildBlackArgs(cfg, testArgs)
}

// BuildBlackCommand is BuildCommand for the black formatter.
func BuildBlackCommand(cfg *config.TaskConfig, testArgs []string) []string {
	return BuildCommand(Black{}, cfg, testArgs)
}

func buildBlackArgs(cfg *config.TaskConfig, testArgs []string) []string {
	if cfg == nil {
		defaults := config.DefaultTaskConfig()
		cfg = &defaults
	}

	args := make([]string, 0, len(cfg.SourceDirectories)+len(testArgs)+len(cfg.AdditionalArgs)+3)
	args = append(args, cfg.SourceDirectories...)
	args = append(args, testArgs...)

	if cfg.CheckOnly {
		args = append(args, "--check")
	}

	if cfg.ConfigFileFilled() {
		args = append(args, "--config", *cfg.ConfigFile)
	}

	args = append(args, cfg.AdditionalArgs...)

	logDebugFn(fmt.Sprintf("black args: check=%t config=%t dirs=%d tests=%d extra=%d",
		cfg.CheckOnly, cfg.ConfigFileFilled(), len(cfg.SourceDirectories), len(testArgs), len(cfg.AdditionalArgs)))
	return args
}
