// Package logging provides the leveled, component-tagged logger shared by
// the HAL and the collector.  Each line carries a timestamp, a level and a
// tag naming the component that wrote it.  Output can be teed to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Level is the minimum severity a Logger emits.
type Level int8

const (
	Verbose Level = iota
	Debug
	Info
	Warn
	Error
)

var levelNames = [...]string{"verbose", "debug", "info", "warn", "error"}

func (lv Level) String() string {
	if lv < Verbose || lv > Error {
		return fmt.Sprintf("Level(%d)", int8(lv))
	}
	return levelNames[lv]
}

func (lv Level) zerolog() zerolog.Level {
	switch lv {
	case Verbose:
		return zerolog.TraceLevel
	case Debug:
		return zerolog.DebugLevel
	case Warn:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLevel converts a level name such as "debug" into a Level.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "trace":
		return Verbose, nil
	case "warning":
		return Warn, nil
	}
	for i, name := range levelNames {
		if s == name {
			return Level(i), nil
		}
	}
	return Info, fmt.Errorf("unknown log level %q", s)
}

// Logger writes leveled events.  It is safe for concurrent use.  A nil
// *Logger discards everything, so components can hold one unconditionally.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	file  *os.File
	level Level
	zl    zerolog.Logger
}

// New creates a logger writing to w at Info level.  A nil w discards
// console output; file output can still be enabled.
func New(w io.Writer) *Logger {
	if w == nil {
		w = io.Discard
	}
	l := &Logger{out: w, level: Info}
	l.rebuild()
	return l
}

// Nop returns a logger that writes nowhere.
func Nop() *Logger { return New(nil) }

// rebuild recreates the zerolog logger after the level or the writers
// change.  Callers hold l.mu.
func (l *Logger) rebuild() {
	w := l.out
	if l.file != nil {
		w = zerolog.MultiLevelWriter(l.out, l.file)
	}
	l.zl = zerolog.New(w).Level(l.level.zerolog()).With().Timestamp().Logger()
}

// SetLevel changes the minimum level emitted.
func (l *Logger) SetLevel(lv Level) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = lv
	l.rebuild()
}

// Level returns the current minimum level.
func (l *Logger) Level() Level {
	if l == nil {
		return Error
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// EnableFileLogging appends every event to the file at path as well as the
// console writer.  The file is created if it does not exist.  A file
// enabled earlier is closed first.
func (l *Logger) EnableFileLogging(path string) error {
	if l == nil {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	old := l.file
	l.file = f
	l.rebuild()
	if old != nil {
		_ = old.Close()
	}
	return nil
}

// DisableFileLogging stops writing to the log file and closes it.  It is a
// no-op when file logging is not enabled.
func (l *Logger) DisableFileLogging() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil
	l.rebuild()
	return f.Close()
}

// Log writes msg under tag if lv is enabled.
func (l *Logger) Log(lv Level, tag, msg string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zl.WithLevel(lv.zerolog()).Str("tag", tag).Msg(msg)
}

func (l *Logger) logf(lv Level, tag, format string, args []any) {
	if l == nil {
		return
	}
	// Filtered levels are never formatted.
	if lv < l.Level() {
		return
	}
	if len(args) > 0 {
		format = fmt.Sprintf(format, args...)
	}
	l.Log(lv, tag, format)
}

func (l *Logger) Verbose(tag, format string, args ...any) { l.logf(Verbose, tag, format, args) }
func (l *Logger) Debug(tag, format string, args ...any)   { l.logf(Debug, tag, format, args) }
func (l *Logger) Info(tag, format string, args ...any)    { l.logf(Info, tag, format, args) }
func (l *Logger) Warn(tag, format string, args ...any)    { l.logf(Warn, tag, format, args) }
func (l *Logger) Error(tag, format string, args ...any)   { l.logf(Error, tag, format, args) }
