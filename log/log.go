// Package log provides the small structured-logging facade used throughout
// cil2cpp: a level-tagged key/value Logger, a severity Filter, and a Helper
// with printf-style convenience methods. It mirrors the logging shape the
// rest of the toolchain (and its command-line front end) was written against.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Level is the severity of a log entry.
type Level int

// Recognized severities, lowest to highest.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String renders the level the way it appears in emitted log lines.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal sink every component in the toolchain logs through.
// Log takes alternating key/value pairs following the level, matching the
// structured-logging convention used by the rest of the codebase.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// stdLogger writes each entry as a single line to an io.Writer.
type stdLogger struct {
	mu  sync.Mutex
	std *log.Logger
}

// NewStdLogger returns a Logger that writes to w using the standard library's
// line logger (no buffering, one line per entry).
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{std: log.New(w, "", log.LstdFlags)}
}

func (l *stdLogger) Log(level Level, keyvals ...interface{}) error {
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "MISSING_VALUE")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	buf := fmt.Sprintf("level=%s", level)
	for i := 0; i < len(keyvals); i += 2 {
		buf += fmt.Sprintf(" %v=%v", keyvals[i], keyvals[i+1])
	}
	l.std.Println(buf)
	return nil
}

// FilterOption configures a Filter.
type FilterOption func(*Filter)

// FilterLevel drops any entry below the given severity.
func FilterLevel(level Level) FilterOption {
	return func(f *Filter) { f.level = level }
}

// Filter wraps a Logger and suppresses entries under its configured level.
type Filter struct {
	logger Logger
	level  Level
}

// NewFilter builds a level-filtering Logger around the given Logger.
func NewFilter(logger Logger, opts ...FilterOption) Logger {
	f := &Filter{logger: logger, level: LevelDebug}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Filter) Log(level Level, keyvals ...interface{}) error {
	if level < f.level {
		return nil
	}
	return f.logger.Log(level, keyvals...)
}

// Helper adds printf-style and leveled convenience methods over a Logger.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger with the Debug/Info/Warn/Error/Fatal family of
// methods used across the compiler and its command-line driver.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) log(level Level, args ...interface{}) {
	_ = h.logger.Log(level, "msg", fmt.Sprint(args...))
}

func (h *Helper) logf(level Level, format string, args ...interface{}) {
	_ = h.logger.Log(level, "msg", fmt.Sprintf(format, args...))
}

// Debug logs at debug level.
func (h *Helper) Debug(args ...interface{}) { h.log(LevelDebug, args...) }

// Debugf logs at debug level with a format string.
func (h *Helper) Debugf(format string, args ...interface{}) { h.logf(LevelDebug, format, args...) }

// Info logs at info level.
func (h *Helper) Info(args ...interface{}) { h.log(LevelInfo, args...) }

// Infof logs at info level with a format string.
func (h *Helper) Infof(format string, args ...interface{}) { h.logf(LevelInfo, format, args...) }

// Warn logs at warn level.
func (h *Helper) Warn(args ...interface{}) { h.log(LevelWarn, args...) }

// Warnf logs at warn level with a format string.
func (h *Helper) Warnf(format string, args ...interface{}) { h.logf(LevelWarn, format, args...) }

// Error logs at error level.
func (h *Helper) Error(args ...interface{}) { h.log(LevelError, args...) }

// Errorf logs at error level with a format string.
func (h *Helper) Errorf(format string, args ...interface{}) { h.logf(LevelError, format, args...) }

// Fatal logs at fatal level and terminates the process.
func (h *Helper) Fatal(args ...interface{}) {
	h.log(LevelFatal, args...)
	os.Exit(1)
}

// Fatalf logs at fatal level with a format string and terminates the process.
func (h *Helper) Fatalf(format string, args ...interface{}) {
	h.logf(LevelFatal, format, args...)
	os.Exit(1)
}
