package logger

// ToolName is the fixed name used for log files of this tool.
const ToolName = "blacktask"

// CurrentToolName returns the tool name (always "blacktask").
func CurrentToolName() string { return ToolName }

// LogPrefixes returns the log file name prefixes to look for.
func LogPrefixes() []string { return []string{ToolName} }

// PrimaryLogPrefix returns the preferred filename prefix for log files.
func PrimaryLogPrefix() string { return ToolName }
