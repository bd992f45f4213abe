package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

// Logger defines a minimal logging contract compatible with go-logger.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider returns named loggers.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger allows attaching structured fields to a logger.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}

// Level orders log severities.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps a level name to a Level, defaulting to LevelInfo.
func ParseLevel(name string) Level {
	for level, candidate := range levelNames {
		if strings.EqualFold(strings.TrimSpace(name), candidate) {
			return level
		}
	}
	return LevelInfo
}

// BasicLogger writes logs at or above Level to Writer.
type BasicLogger struct {
	Writer io.Writer
	Level  Level
	fields map[string]any
	mu     *sync.Mutex
}

// Default returns a usable logger when none is provided. It only reports
// warnings and errors, so builds stay quiet in test output.
func Default() Logger {
	return defaultLogger
}

// NewBasicLogger constructs a BasicLogger that logs to stdout by default.
func NewBasicLogger() *BasicLogger {
	return &BasicLogger{
		Writer: os.Stdout,
		Level:  LevelInfo,
		mu:     &sync.Mutex{},
	}
}

// WithFields implements FieldsLogger.
func (l *BasicLogger) WithFields(fields map[string]any) Logger {
	if l == nil {
		return &BasicLogger{Writer: os.Stdout, fields: copyFields(fields), mu: &sync.Mutex{}}
	}
	if len(fields) == 0 {
		return l
	}
	merged := copyFields(l.fields)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	for key, value := range fields {
		merged[key] = value
	}
	return &BasicLogger{
		Writer: l.Writer,
		Level:  l.Level,
		fields: merged,
		mu:     l.lock(),
	}
}

// WithContext implements Logger.
func (l *BasicLogger) WithContext(ctx context.Context) Logger {
	return l
}

// Trace implements Logger.
func (l *BasicLogger) Trace(msg string, args ...any) { l.log(LevelTrace, msg, args...) }

// Debug implements Logger.
func (l *BasicLogger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }

// Info implements Logger.
func (l *BasicLogger) Info(msg string, args ...any) { l.log(LevelInfo, msg, args...) }

// Warn implements Logger.
func (l *BasicLogger) Warn(msg string, args ...any) { l.log(LevelWarn, msg, args...) }

// Error implements Logger.
func (l *BasicLogger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }

// Fatal implements Logger. It does not exit the process.
func (l *BasicLogger) Fatal(msg string, args ...any) { l.log(LevelFatal, msg, args...) }

func (l *BasicLogger) log(level Level, msg string, args ...any) {
	if l == nil || level < l.Level {
		return
	}
	out := l.Writer
	if out == nil {
		out = os.Stdout
	}
	combined := append(fieldsToArgs(l.fields), args...)
	mu := l.lock()
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "[%s] %s %v\n", level, msg, combined)
}

var fallbackMu sync.Mutex

func (l *BasicLogger) lock() *sync.Mutex {
	if l.mu == nil {
		return &fallbackMu
	}
	return l.mu
}

func copyFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		out[key] = value
	}
	return out
}

func fieldsToArgs(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(fields)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Trace(string, ...any)                 {}
func (nopLogger) Debug(string, ...any)                 {}
func (nopLogger) Info(string, ...any)                  {}
func (nopLogger) Warn(string, ...any)                  {}
func (nopLogger) Error(string, ...any)                 {}
func (nopLogger) Fatal(string, ...any)                 {}
func (n nopLogger) WithContext(context.Context) Logger { return n }

var defaultLogger Logger = &BasicLogger{Writer: os.Stderr, Level: LevelWarn, mu: &sync.Mutex{}}

var _ Logger = (*BasicLogger)(nil)
var _ FieldsLogger = (*BasicLogger)(nil)
var _ Logger = nopLogger{}
