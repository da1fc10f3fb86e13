package logger

import (
	"bufio"
	"context"
	"os"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestActiveLoggerLifecycle(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	l, err := NewLogger()
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	defer func() { _ = l.RemoveLogFile() }()

	SetLogger(l)
	if ActiveLogger() != l {
		t.Fatalf("ActiveLogger() did not return installed logger")
	}

	LogInfo("hello")
	LogWarn("careful")
	LogError("broken")
	LogDebug("details")
	l.Flush()

	if got := l.ExtractRecentErrors(5); len(got) != 2 || got[0] != "careful" || got[1] != "broken" {
		t.Fatalf("ExtractRecentErrors() = %v", got)
	}

	if err := CloseLogger(); err != nil {
		t.Fatalf("CloseLogger() error = %v", err)
	}
	if ActiveLogger() != nil {
		t.Fatalf("ActiveLogger() should be nil after CloseLogger")
	}
	if err := CloseLogger(); err != nil {
		t.Fatalf("second CloseLogger() error = %v", err)
	}

	// Writes after close are dropped silently.
	l.Error("after close")
	if got := l.ExtractRecentErrors(5); len(got) != 2 {
		t.Fatalf("write after close recorded: %v", got)
	}
}

func TestLoggerWritesJSONLines(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	l, err := NewLoggerWithSuffix("blackCheck")
	if err != nil {
		t.Fatalf("NewLoggerWithSuffix() error = %v", err)
	}
	defer func() { _ = l.RemoveLogFile() }()
	defer l.Close()

	l.Warn("tool output")
	l.Flush()

	f, err := os.Open(l.Path())
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		t.Fatalf("log file is empty")
	}
	var entry struct {
		Level   string    `json:"level"`
		Message string    `json:"message"`
		PID     int       `json:"pid"`
		Time    time.Time `json:"time"`
	}
	if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, scanner.Text())
	}
	if entry.Level != "warn" || entry.Message != "tool output" || entry.PID != os.Getpid() {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.Time.IsZero() {
		t.Fatalf("entry has no timestamp")
	}
}

func TestTaskLoggerContext(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	if FromContext(context.Background()) != nil {
		t.Fatalf("expected nil logger without active or task logger")
	}

	active, err := NewLogger()
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	defer func() { _ = active.RemoveLogFile() }()
	defer active.Close()
	SetLogger(active)
	t.Cleanup(func() { SetLogger(nil) })

	if FromContext(context.Background()) != active {
		t.Fatalf("expected fallback to active logger")
	}

	taskLog, err := NewLoggerWithSuffix("task")
	if err != nil {
		t.Fatalf("NewLoggerWithSuffix() error = %v", err)
	}
	defer func() { _ = taskLog.RemoveLogFile() }()
	defer taskLog.Close()

	ctx := WithTaskLogger(context.Background(), taskLog)
	if FromContext(ctx) != taskLog {
		t.Fatalf("expected task logger from context")
	}
}

func TestCleanupOldLogsReportsFreedBytes(t *testing.T) {
	tempDir := setTempDirEnv(t, t.TempDir())
	path := createTempLog(t, tempDir, "blacktask-7001.log")

	stubProcessState(t, func(int) ProcessState { return ProcessState{} })

	stats, err := CleanupOldLogs()
	if err != nil {
		t.Fatalf("CleanupOldLogs() error = %v", err)
	}
	if stats.Deleted != 1 || stats.FreedBytes != int64(len("test")) {
		t.Fatalf("stats = %+v, want 1 deleted and 4 bytes freed", stats)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected %s removed", path)
	}
}
