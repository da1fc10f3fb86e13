package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	black "blacktask/internal/black"
	config "blacktask/internal/config"
	executor "blacktask/internal/executor"
	formatter "blacktask/internal/formatter"
	ilogger "blacktask/internal/logger"
	task "blacktask/internal/task"
	utils "blacktask/internal/utils"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	exitFn  = os.Exit
)

type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit %d", e.code)
}

type cliOptions struct {
	ConfigFile string
	ProjectDir string

	Check       bool
	BlackConfig string
	SourceDirs  []string
	Args        []string
	TestsDir    string
	Venv        string
	Timeout     string

	JSON     bool
	DryRun   bool
	TaskLogs bool
	Version  bool
}

// Run is the program entrypoint for cmd/blacktask/main.go.
func Run() {
	exitFn(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, args, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		var ee exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	name := ilogger.CurrentToolName()
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s [flags] [task|group...]", name),
		Short:         "Run the black formatter tasks of a Python project",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Version {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", name, version)
				return nil
			}
			return codeToError(runTargets(cmd, opts, args))
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	addProjectFlags(cmd.PersistentFlags(), opts)
	addRunFlags(cmd.Flags(), opts)
	cmd.Flags().BoolVarP(&opts.Version, "version", "v", false, "Print version and exit")

	cmd.AddCommand(
		newRunCommand(opts),
		newListCommand(opts),
		newCommandCommand(opts),
		newCleanupCommand(),
		newVersionCommand(name),
	)
	return cmd
}

func addProjectFlags(fs *pflag.FlagSet, opts *cliOptions) {
	fs.StringVar(&opts.ConfigFile, "config", "", "Config file path (default: $HOME/.blacktask/config.*)")
	fs.StringVarP(&opts.ProjectDir, "project-dir", "C", "", "Project directory (default: current directory)")

	fs.BoolVar(&opts.Check, "check", false, "Run black in check mode")
	fs.StringVar(&opts.BlackConfig, "black-config", "", "Config file passed to black via --config")
	fs.StringArrayVar(&opts.SourceDirs, "source-dir", nil, "Source directory to format (repeatable, default: src)")
	fs.StringArrayVar(&opts.Args, "arg", nil, "Extra argument passed to black (repeatable)")
	fs.StringVar(&opts.TestsDir, "tests-dir", "", "Tests directory (default: tests, when present)")
	fs.StringVar(&opts.Venv, "venv", "", "Virtual env to activate (default: .venv, when present)")
}

func addRunFlags(fs *pflag.FlagSet, opts *cliOptions) {
	fs.StringVar(&opts.Timeout, "timeout", "", "Per-task timeout, as seconds or a duration (0 disables)")
	fs.BoolVar(&opts.JSON, "json", false, "Print results as JSON")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Print commands without running them")
	fs.BoolVar(&opts.TaskLogs, "task-logs", false, "Keep a log file per failed task")
}

func newRunCommand(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "run [task|group...]",
		Short:         "Run the selected tasks (default tasks when none given)",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return codeToError(runTargets(cmd, opts, args))
		},
	}
	addRunFlags(cmd.Flags(), opts)
	return cmd
}

func newListCommand(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List registered tasks",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}
			return printTaskList(cmd.OutOrStdout(), env.project.Tasks(), opts.JSON)
		},
	}
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print tasks as JSON")
	return cmd
}

func newCommandCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "command <task>",
		Short:         "Print the command line of a task",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}
			t, ok := env.project.Task(args[0])
			if !ok {
				return fmt.Errorf("unknown task %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), utils.ShellJoin(t.Command()))
			return nil
		},
	}
}

func newVersionCommand(name string) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version and exit",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", name, version)
			return nil
		},
	}
}

func newCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "cleanup",
		Short:         "Clean up old logs and exit",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return codeToError(runCleanupMode(cmd.OutOrStdout(), cmd.ErrOrStderr()))
		},
	}
}

func codeToError(code int) error {
	if code == 0 {
		return nil
	}
	return exitError{code: code}
}

// projectEnv is everything a command needs after flags, environment and
// config files have been merged.
type projectEnv struct {
	viper    *viper.Viper
	settings *config.ProjectSettings
	project  *task.Project
	tasks    black.Tasks
}

func loadProject(cmd *cobra.Command, opts *cliOptions) (*projectEnv, error) {
	v, err := config.NewViper(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()

	if flags.Changed("tests-dir") {
		v.Set("tests-directory", opts.TestsDir)
	}
	if flags.Changed("venv") {
		v.Set("venv", opts.Venv)
	}

	projectDir := strings.TrimSpace(v.GetString("project-dir"))
	if flags.Changed("project-dir") {
		projectDir = strings.TrimSpace(opts.ProjectDir)
		if projectDir == "" {
			return nil, fmt.Errorf("--project-dir flag requires a value")
		}
	}

	settings, err := config.LoadSettings(projectDir, v)
	if err != nil {
		return nil, err
	}

	project := task.NewProject(settings.ProjectDir, settings)
	tasks, err := black.Register(project, buildOptions(flags, opts, v))
	if err != nil {
		return nil, err
	}
	ilogger.LogDebug(fmt.Sprintf("Project %s: %d tasks registered", settings.ProjectDir, len(project.Tasks())))

	return &projectEnv{viper: v, settings: settings, project: project, tasks: tasks}, nil
}

// buildOptions layers changed flags over values from the environment and
// config file.
func buildOptions(flags *pflag.FlagSet, opts *cliOptions, v *viper.Viper) config.Options {
	out := config.OptionsFromViper(v)
	if flags.Changed("check") {
		out.CheckOnly = config.Bool(opts.Check)
	}
	if flags.Changed("black-config") {
		out.ConfigFile = config.String(opts.BlackConfig)
	}
	if flags.Changed("source-dir") {
		out.SourceDirectories = append([]string{}, opts.SourceDirs...)
	}
	if flags.Changed("arg") {
		out.AdditionalArgs = append([]string{}, opts.Args...)
	}
	return out
}

func resolveRunOptions(flags *pflag.FlagSet, opts *cliOptions, env *projectEnv) executor.RunOptions {
	if flags.Changed("timeout") {
		env.viper.Set("timeout", opts.Timeout)
	}
	taskLogs := opts.TaskLogs
	if !flags.Changed("task-logs") && env.viper.IsSet("task-logs") {
		taskLogs = config.ParseBoolFlag(env.viper.GetString("task-logs"), false)
	}
	return executor.RunOptions{
		Dir:        env.settings.ProjectDir,
		VirtualEnv: env.settings.VirtualEnvDir(),
		Timeout:    config.ResolveTimeout(env.viper),
		TaskLogs:   taskLogs,
	}
}

func runTargets(cmd *cobra.Command, opts *cliOptions, targets []string) int {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	return runWithLoggerAndCleanup(stderr, func() int {
		formatter.SetLogFunc(ilogger.LogDebug)
		defer formatter.SetLogFunc(nil)

		env, err := loadProject(cmd, opts)
		if err != nil {
			ilogger.LogError(err.Error())
			fmt.Fprintf(stderr, "ERROR: %v\n", err)
			return 1
		}

		selected, err := env.project.Select(targets...)
		if err != nil {
			ilogger.LogError(err.Error())
			fmt.Fprintf(stderr, "ERROR: %v\n", err)
			return 1
		}
		if len(selected) == 0 {
			fmt.Fprintln(stderr, "No tasks selected.")
			return 0
		}

		if opts.DryRun {
			for _, t := range selected {
				fmt.Fprintf(stdout, "%s: %s\n", t.Name, utils.ShellJoin(t.Command()))
			}
			return 0
		}

		runOpts := resolveRunOptions(cmd.Flags(), opts, env)
		if !opts.JSON {
			runOpts.Output = stderr
		}
		ilogger.LogInfo(fmt.Sprintf("Running %d task(s), timeout=%s, venv=%q", len(selected), runOpts.Timeout, runOpts.VirtualEnv))

		results := executor.RunAll(cmd.Context(), selected, runOpts)

		if opts.JSON {
			data, err := executor.MarshalResults(results)
			if err != nil {
				fmt.Fprintf(stderr, "ERROR: %v\n", err)
				return 1
			}
			fmt.Fprintln(stdout, string(data))
		} else {
			fmt.Fprintln(stdout, executor.GenerateSummary(results))
		}
		return executor.ExitCode(results)
	})
}

type taskListing struct {
	Name    string   `json:"name"`
	Group   string   `json:"group"`
	Default bool     `json:"default"`
	Command []string `json:"command"`
}

func printTaskList(w io.Writer, tasks []*task.Task, asJSON bool) error {
	listing := make([]taskListing, 0, len(tasks))
	for _, t := range tasks {
		listing = append(listing, taskListing{Name: t.Name, Group: t.Group, Default: t.Default, Command: t.Command()})
	}

	if asJSON {
		data, err := json.MarshalIndent(listing, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	for _, l := range listing {
		marker := " "
		if l.Default {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-12s %-5s %s\n", marker, l.Name, l.Group, utils.ShellJoin(l.Command))
	}
	return nil
}
