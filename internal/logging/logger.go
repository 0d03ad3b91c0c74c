// Package logging provides leveled structured logging for civitai-prompt-stats.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level represents log severity
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

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
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a config string (debug, info, warn, error) to a Level.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Entry is one structured log record in JSON mode.
type Entry struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// Logger writes leveled log lines, optionally as JSON.
type Logger struct {
	mu       sync.Mutex
	output   io.Writer
	level    Level
	jsonMode bool
	fields   map[string]any
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Default returns the process-wide logger.
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(os.Stderr)
	})
	return defaultLogger
}

// New creates a logger writing to output at info level.
func New(output io.Writer) *Logger {
	return &Logger{
		output: output,
		level:  LevelInfo,
		fields: make(map[string]any),
	}
}

// SetLevel sets the minimum level that will be emitted.
func (l *Logger) SetLevel(level Level) *Logger {
	l.level = level
	return l
}

// SetJSON switches between human-readable and JSON line output.
func (l *Logger) SetJSON(enabled bool) *Logger {
	l.jsonMode = enabled
	return l
}

// With returns a child logger that always carries the given fields.
func (l *Logger) With(fields map[string]any) *Logger {
	child := &Logger{
		output:   l.output,
		level:    l.level,
		jsonMode: l.jsonMode,
		fields:   make(map[string]any, len(l.fields)+len(fields)),
	}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	for k, v := range fields {
		child.fields[k] = v
	}
	return child
}

func (l *Logger) Debug(msg string, fields ...map[string]any) { l.log(LevelDebug, msg, fields...) }
func (l *Logger) Info(msg string, fields ...map[string]any)  { l.log(LevelInfo, msg, fields...) }
func (l *Logger) Warn(msg string, fields ...map[string]any)  { l.log(LevelWarn, msg, fields...) }
func (l *Logger) Error(msg string, fields ...map[string]any) { l.log(LevelError, msg, fields...) }

func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, fmt.Sprintf(format, args...)) }

func (l *Logger) log(level Level, msg string, fields ...map[string]any) {
	if level < l.level {
		return
	}

	var merged map[string]any
	if len(l.fields) > 0 || len(fields) > 0 {
		merged = make(map[string]any, len(l.fields))
		for k, v := range l.fields {
			merged[k] = v
		}
		for _, f := range fields {
			for k, v := range f {
				merged[k] = v
			}
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.jsonMode {
		data, _ := json.Marshal(Entry{
			Time:    time.Now().UTC(),
			Level:   level.String(),
			Message: msg,
			Fields:  merged,
		})
		fmt.Fprintln(l.output, string(data))
		return
	}

	timestamp := time.Now().Format("15:04:05")
	if len(merged) > 0 {
		fieldStr := ""
		for k, v := range merged {
			fieldStr += fmt.Sprintf(" %s=%v", k, v)
		}
		fmt.Fprintf(l.output, "%s %-5s %s%s\n", timestamp, level.String(), msg, fieldStr)
	} else {
		fmt.Fprintf(l.output, "%s %-5s %s\n", timestamp, level.String(), msg)
	}
}

// Package-level helpers using the default logger.

func Debug(msg string, fields ...map[string]any) { Default().Debug(msg, fields...) }
func Info(msg string, fields ...map[string]any)  { Default().Info(msg, fields...) }
func Warn(msg string, fields ...map[string]any)  { Default().Warn(msg, fields...) }
func Error(msg string, fields ...map[string]any) { Default().Error(msg, fields...) }

func Debugf(format string, args ...any) { Default().Debugf(format, args...) }
func Infof(format string, args ...any)  { Default().Infof(format, args...) }
func Warnf(format string, args ...any)  { Default().Warnf(format, args...) }
func Errorf(format string, args ...any) { Default().Errorf(format, args...) }
