package executor

import (
	"bytes"
	"unicode/utf8"
)

// logWriter splits process output into lines and hands each line, prefixed
// and capped at maxLen bytes, to logFn.
type logWriter struct {
	prefix  string
	maxLen  int
	logFn   func(string)
	buf     bytes.Buffer
	dropped bool
}

func newLogWriter(prefix string, maxLen int, logFn func(string)) *logWriter {
	if maxLen <= 0 {
		maxLen = logLineLimit
	}
	if logFn == nil {
		logFn = func(string) {}
	}
	return &logWriter{prefix: prefix, maxLen: maxLen, logFn: logFn}
}

func (lw *logWriter) Write(p []byte) (int, error) {
	if lw == nil {
		return len(p), nil
	}
	total := len(p)
	for len(p) > 0 {
		idx := bytes.IndexByte(p, '\n')
		if idx < 0 {
			lw.writeLimited(p)
			break
		}
		lw.writeLimited(p[:idx])
		lw.emit(true)
		p = p[idx+1:]
	}
	return total, nil
}

// Flush emits a trailing partial line.
func (lw *logWriter) Flush() {
	if lw == nil || lw.buf.Len() == 0 {
		return
	}
	lw.emit(false)
}

func (lw *logWriter) emit(force bool) {
	line := string(bytes.TrimRight(lw.buf.Bytes(), "\r"))
	dropped := lw.dropped
	lw.dropped = false
	lw.buf.Reset()
	if line == "" && !force {
		return
	}
	if dropped || len(line) > lw.maxLen {
		if lw.maxLen > 3 {
			line = cutAtRune(line, lw.maxLen-3) + "..."
		} else {
			line = cutAtRune(line, lw.maxLen)
		}
	}
	lw.logFn(lw.prefix + line)
}

func (lw *logWriter) writeLimited(p []byte) {
	if len(p) == 0 {
		return
	}
	remaining := lw.maxLen - lw.buf.Len()
	if remaining <= 0 {
		lw.dropped = true
		return
	}
	if len(p) <= remaining {
		lw.buf.Write(p)
		return
	}
	cut := remaining
	for cut > 0 && !utf8.RuneStart(p[cut]) {
		cut--
	}
	lw.buf.Write(p[:cut])
	lw.dropped = true
}

// cutAtRune returns at most n bytes of s without splitting a rune.
func cutAtRune(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// tailBuffer keeps the last limit bytes written to it. After a cut the data
// starts on a rune boundary.
type tailBuffer struct {
	limit int
	data  []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	if b.limit <= 0 {
		return len(p), nil
	}
	if len(p) >= b.limit {
		b.data = append(b.data[:0], skipToRuneStart(p[len(p)-b.limit:])...)
		return len(p), nil
	}
	if overflow := len(b.data) + len(p) - b.limit; overflow > 0 {
		b.data = append(b.data[:0], skipToRuneStart(b.data[overflow:])...)
	}
	b.data = append(b.data, p...)
	return len(p), nil
}

func skipToRuneStart(p []byte) []byte {
	for i := 0; i < len(p) && i < utf8.UTFMax; i++ {
		if utf8.RuneStart(p[i]) {
			return p[i:]
		}
	}
	return p
}

func (b *tailBuffer) String() string { return string(b.data) }
