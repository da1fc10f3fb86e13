package app

import (
	"fmt"
	"io"
	"sync"

	ilogger "blacktask/internal/logger"

	"github.com/dustin/go-humanize"
)

const recentErrorLimit = 10

var (
	newLoggerFn      = ilogger.NewLogger
	cleanupOldLogsFn = ilogger.CleanupOldLogs

	startupCleanup sync.WaitGroup
)

func runWithLoggerAndCleanup(stderr io.Writer, fn func() int) (exitCode int) {
	logger, err := newLoggerFn()
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: failed to initialize logger: %v\n", err)
		return 1
	}
	ilogger.SetLogger(logger)

	defer func() {
		logger := ilogger.ActiveLogger()
		if logger != nil {
			logger.Flush()
		}
		if err := ilogger.CloseLogger(); err != nil {
			fmt.Fprintf(stderr, "ERROR: failed to close logger: %v\n", err)
		}
		if logger == nil {
			return
		}

		if exitCode != 0 {
			if entries := logger.ExtractRecentErrors(recentErrorLimit); len(entries) > 0 {
				fmt.Fprintln(stderr, "\n=== Recent Errors ===")
				for _, entry := range entries {
					fmt.Fprintln(stderr, entry)
				}
				fmt.Fprintf(stderr, "Log file: %s (deleted)\n", logger.Path())
			}
		}
		_ = logger.RemoveLogFile()
	}()
	defer startupCleanup.Wait()

	// Clean up stale logs from previous runs.
	scheduleStartupCleanup()

	return fn()
}

func scheduleStartupCleanup() {
	startupCleanup.Add(1)
	go func() {
		defer startupCleanup.Done()
		stats, err := cleanupOldLogsFn()
		if err != nil {
			ilogger.LogWarn(fmt.Sprintf("startup log cleanup: %v", err))
		}
		if stats.Deleted > 0 {
			ilogger.LogInfo(fmt.Sprintf("Removed %d stale log file(s), freed %s", stats.Deleted, humanize.Bytes(uint64(stats.FreedBytes))))
		}
	}()
}

func runCleanupMode(stdout, stderr io.Writer) int {
	stats, err := cleanupOldLogsFn()
	if err != nil {
		fmt.Fprintf(stderr, "Cleanup failed: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "Cleanup completed")
	fmt.Fprintf(stdout, "Files scanned: %d\n", stats.Scanned)
	fmt.Fprintf(stdout, "Files deleted: %d\n", stats.Deleted)
	for _, f := range stats.DeletedFiles {
		fmt.Fprintf(stdout, "  - %s\n", f)
	}
	fmt.Fprintf(stdout, "Files kept: %d\n", stats.Kept)
	for _, f := range stats.KeptFiles {
		fmt.Fprintf(stdout, "  - %s\n", f)
	}
	if stats.Errors > 0 {
		fmt.Fprintf(stdout, "Deletion errors: %d\n", stats.Errors)
	}
	fmt.Fprintf(stdout, "Space freed: %s\n", humanize.Bytes(uint64(stats.FreedBytes)))
	return 0
}
