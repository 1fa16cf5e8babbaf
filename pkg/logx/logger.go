package logx

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Fields is a map of structured log fields.
type Fields map[string]interface{}

// Format represents the output format
type Format string

const (
	// FormatConsole outputs human-readable console logs (default)
	FormatConsole Format = "console"
	// FormatJSON outputs JSON formatted logs
	FormatJSON Format = "json"
)

// Logger is the main logger instance
type Logger struct {
	mu       sync.Mutex
	level    Level
	format   Format
	writer   io.Writer
	exitFunc func(int)
}

// NewLogger creates a new logger writing to stdout.
func NewLogger(level Level, format Format) *Logger {
	return &Logger{
		level:    level,
		format:   format,
		writer:   os.Stdout,
		exitFunc: os.Exit,
	}
}

// NewFromEnv creates a logger configured from LOG_LEVEL and LOG_FORMAT.
func NewFromEnv() *Logger {
	level := ParseLevel(os.Getenv("LOG_LEVEL"))
	format := FormatConsole
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		format = FormatJSON
	}
	return NewLogger(level, format)
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// log is the internal logging method
func (l *Logger) log(level Level, msg string, fields Fields, err error) {
	l.mu.Lock()
	enabled := l.level.Enabled(level)
	format := l.format
	l.mu.Unlock()

	if !enabled {
		return
	}

	now := time.Now()

	var line []byte
	if format == FormatJSON {
		line = formatJSON(now, level, msg, fields, err)
	} else {
		line = formatConsole(now, level, msg, fields, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, writeErr := l.writer.Write(line); writeErr != nil {
		fmt.Fprintf(os.Stderr, "Error writing log: %v\n", writeErr)
	}
}

// WithField creates a new entry with a field
func (l *Logger) WithField(key string, value interface{}) *Entry {
	return newEntry(l).WithField(key, value)
}

// WithFields creates a new entry with fields
func (l *Logger) WithFields(fields Fields) *Entry {
	return newEntry(l).WithFields(fields)
}

// WithError creates a new entry with an error
func (l *Logger) WithError(err error) *Entry {
	return newEntry(l).WithError(err)
}

// exit calls the exit function (useful for testing)
func (l *Logger) exit(code int) {
	l.exitFunc(code)
}

func formatConsole(ts time.Time, level Level, msg string, fields Fields, err error) []byte {
	var b strings.Builder
	b.WriteString(ts.Format(time.RFC3339))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)

	if err != nil {
		b.WriteString(" error=")
		b.WriteString(err.Error())
	}

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, fields[k])
		}
	}

	b.WriteString("\n")
	return []byte(b.String())
}

func formatJSON(ts time.Time, level Level, msg string, fields Fields, err error) []byte {
	payload := make(map[string]interface{}, len(fields)+4)
	for k, v := range fields {
		payload[k] = v
	}
	payload["time"] = ts.Format(time.RFC3339)
	payload["level"] = level.String()
	payload["message"] = msg
	if err != nil {
		payload["error"] = err.Error()
	}

	line, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return []byte(fmt.Sprintf(`{"level":"ERROR","message":"logx: marshal failure: %v"}`+"\n", marshalErr))
	}
	return append(line, '\n')
}
