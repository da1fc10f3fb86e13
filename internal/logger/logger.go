package logger

import (
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	maxErrorEntries = 100
	// Logs without a known process start time are treated as stale once older
	// than this.
	stalePIDLogAge = 7 * 24 * time.Hour
)

var (
	inspectProcessFn = inspectProcess
	removeLogFileFn  = os.Remove
	globLogFiles     = filepath.Glob
	fileStatFn       = os.Lstat
	evalSymlinksFn   = filepath.EvalSymlinks
)

// Logger writes JSON log lines to a per-process file in the temp directory
// and remembers the most recent warnings and errors.
type Logger struct {
	path   string
	file   *os.File
	zl     zerolog.Logger
	closed atomic.Bool

	mu           sync.Mutex
	errorEntries []string
	closeOnce    sync.Once
	closeErr     error
}

// CleanupStats reports what CleanupOldLogs did.
type CleanupStats struct {
	Scanned      int
	Deleted      int
	Kept         int
	Errors       int
	FreedBytes   int64
	DeletedFiles []string
	KeptFiles    []string
}

func NewLogger() (*Logger, error) { return NewLoggerWithSuffix("") }

// NewLoggerWithSuffix creates $TMPDIR/blacktask-<pid>[-suffix].log.
func NewLoggerWithSuffix(suffix string) (*Logger, error) {
	name := fmt.Sprintf("%s-%d", PrimaryLogPrefix(), os.Getpid())
	if s := sanitizeLogSuffix(suffix); s != "" {
		name += "-" + s
	}
	path := filepath.Join(os.TempDir(), name+".log")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) // #nosec G304 -- path is built from the temp dir and a sanitized name
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	zl := zerolog.New(zerolog.SyncWriter(f)).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()

	return &Logger{path: path, file: f, zl: zl}, nil
}

func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

func (l *Logger) Debug(msg string) { l.log(zerolog.DebugLevel, msg) }

func (l *Logger) Info(msg string) { l.log(zerolog.InfoLevel, msg) }

func (l *Logger) Warn(msg string) { l.log(zerolog.WarnLevel, msg) }

func (l *Logger) Error(msg string) { l.log(zerolog.ErrorLevel, msg) }

func (l *Logger) log(level zerolog.Level, msg string) {
	if l == nil || l.file == nil || l.closed.Load() {
		return
	}
	l.zl.WithLevel(level).Msg(msg)

	if level >= zerolog.WarnLevel {
		l.mu.Lock()
		l.errorEntries = append(l.errorEntries, msg)
		if over := len(l.errorEntries) - maxErrorEntries; over > 0 {
			l.errorEntries = append(l.errorEntries[:0], l.errorEntries[over:]...)
		}
		l.mu.Unlock()
	}
}

// Flush syncs buffered log lines to disk.
func (l *Logger) Flush() {
	if l == nil || l.file == nil || l.closed.Load() {
		return
	}
	_ = l.file.Sync()
}

// Close flushes and closes the log file. The file itself is kept.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		_ = l.file.Sync()
		l.closeErr = l.file.Close()
	})
	return l.closeErr
}

// RemoveLogFile deletes the log file. A missing file is not an error.
func (l *Logger) RemoveLogFile() error {
	if l == nil || l.path == "" {
		return nil
	}
	if err := removeLogFileFn(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// ExtractRecentErrors returns up to maxEntries of the most recent warning and
// error messages, oldest first.
func (l *Logger) ExtractRecentErrors(maxEntries int) []string {
	if l == nil || maxEntries <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.errorEntries) == 0 {
		return nil
	}
	start := 0
	if len(l.errorEntries) > maxEntries {
		start = len(l.errorEntries) - maxEntries
	}
	return append([]string(nil), l.errorEntries[start:]...)
}

// CleanupOldLogs removes log files left behind by processes that are no
// longer running.
func CleanupOldLogs() (CleanupStats, error) { return cleanupOldLogs() }

func cleanupOldLogs() (CleanupStats, error) {
	var stats CleanupStats
	tempDir := os.TempDir()

	var paths []string
	for _, prefix := range LogPrefixes() {
		matches, err := globLogFiles(filepath.Join(tempDir, prefix+"-*.log"))
		if err != nil {
			logWarn(fmt.Sprintf("cleanupOldLogs: glob failed: %v", err))
			return CleanupStats{}, err
		}
		paths = append(paths, matches...)
	}

	base := resolveTempDir(tempDir)
	var errs []error
	for _, path := range paths {
		stats.Scanned++

		info, unsafe, reason := inspectLogFile(path, base)
		if unsafe {
			logWarn(fmt.Sprintf("cleanupOldLogs: skipping %s: %s", path, reason))
			stats.Kept++
			stats.KeptFiles = append(stats.KeptFiles, path)
			continue
		}

		pid, ok := parsePIDFromLog(path)
		if !ok {
			stats.Kept++
			stats.KeptFiles = append(stats.KeptFiles, path)
			continue
		}

		if !ownerGone(path, pid) {
			stats.Kept++
			stats.KeptFiles = append(stats.KeptFiles, path)
			continue
		}

		if err := removeLogFileFn(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				stats.Deleted++
				stats.DeletedFiles = append(stats.DeletedFiles, path)
				continue
			}
			stats.Errors++
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
			continue
		}
		stats.Deleted++
		stats.DeletedFiles = append(stats.DeletedFiles, path)
		if info != nil {
			stats.FreedBytes += info.Size()
		}
	}

	return stats, errors.Join(errs...)
}

func resolveTempDir(tempDir string) string {
	base, err := filepath.Abs(tempDir)
	if err != nil {
		base = filepath.Clean(tempDir)
	}
	if eval, err := filepath.EvalSymlinks(base); err == nil {
		base = eval
	}
	return base
}

// inspectLogFile rejects symlinks and files resolving outside base.
func inspectLogFile(path, base string) (os.FileInfo, bool, string) {
	info, err := fileStatFn(path)
	if err != nil {
		return nil, true, fmt.Sprintf("stat failed: %v", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return info, true, "refusing to delete symlink"
	}

	resolved, err := evalSymlinksFn(path)
	if err != nil {
		return info, true, fmt.Sprintf("path resolution failed: %v", err)
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return info, true, fmt.Sprintf("path resolution failed: %v", err)
	}

	rel, err := filepath.Rel(base, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return info, true, "file is outside tempDir"
	}
	return info, false, ""
}

func parsePIDFromLog(path string) (int, bool) {
	name := strings.TrimSuffix(filepath.Base(path), ".log")
	for _, prefix := range LogPrefixes() {
		rest, ok := strings.CutPrefix(name, prefix+"-")
		if !ok {
			continue
		}
		digits := rest
		if idx := strings.IndexByte(rest, '-'); idx >= 0 {
			digits = rest[:idx]
		}
		if digits == "" {
			return 0, false
		}
		pid, err := strconv.Atoi(digits)
		if err != nil || pid <= 0 {
			return 0, false
		}
		return pid, true
	}
	return 0, false
}

// sanitizeLogSuffix maps raw to a file-name-safe suffix. Inputs that needed
// rewriting get a short hash so distinct inputs stay distinct.
func sanitizeLogSuffix(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	clean := b.String()
	if clean == raw {
		return clean
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(raw))
	return fmt.Sprintf("%s_%08x", clean, h.Sum32())
}
