// Structured logging for the limitxy post-processor
//
// Provides leveled logging with:
// - Structured fields (key-value pairs), persistent or per entry
// - Text and JSON output formats
// - ANSI colors when writing to a terminal
// - Per-component loggers with prefixes
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// DEBUG level for detailed debugging information
	DEBUG LogLevel = iota

	// INFO level for general informational messages
	INFO

	// WARN level for warning messages
	WARN

	// ERROR level for error messages
	ERROR
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a LogLevel, defaulting to INFO
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// OutputFormat specifies the output format for log messages
type OutputFormat int

const (
	// FormatText outputs human-readable text format
	FormatText OutputFormat = iota
	// FormatJSON outputs one JSON object per line
	FormatJSON
)

// ParseFormat parses "text" or "json"; anything else yields FormatText
func ParseFormat(s string) OutputFormat {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return FormatJSON
	}
	return FormatText
}

// Fields is a map of structured logging fields
type Fields map[string]interface{}

// merge returns a new map holding a's entries overridden by b's.
func (a Fields) merge(b Fields) Fields {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(Fields, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// sink is shared by a logger and every logger derived from it so that
// writes from sibling components never interleave.
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

// Logger is a leveled, prefixed logger
type Logger struct {
	out        *sink
	prefix     string
	level      LogLevel
	timeFormat string
	colorize   bool
	outFormat  OutputFormat
	fields     Fields
	caller     bool
}

var (
	defaultMu     sync.Mutex
	defaultLogger *Logger

	// ANSI color codes for terminal output
	ansiColors = map[LogLevel]string{
		DEBUG: "\x1b[36m", // Cyan
		INFO:  "\x1b[32m", // Green
		WARN:  "\x1b[33m", // Yellow
		ERROR: "\x1b[31m", // Red
	}
	ansiReset = "\x1b[0m"
)

// New creates a logger writing to stderr with the given prefix.
// Colors are enabled only if stderr is a terminal and NO_COLOR is unset.
func New(prefix string) *Logger {
	return &Logger{
		out:        &sink{w: os.Stderr},
		prefix:     prefix,
		level:      INFO,
		timeFormat: "2006-01-02 15:04:05.000",
		colorize:   os.Getenv("NO_COLOR") == "" && IsTerminal(os.Stderr),
		outFormat:  FormatText,
	}
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) { l.level = level }

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel { return l.level }

// SetWriter sets the output writer
func (l *Logger) SetWriter(w io.Writer) {
	l.out.mu.Lock()
	l.out.w = w
	l.out.mu.Unlock()
}

// SetColorize enables or disables colorized output
func (l *Logger) SetColorize(enable bool) { l.colorize = enable }

// SetFormat sets the output format (FormatText or FormatJSON)
func (l *Logger) SetFormat(format OutputFormat) { l.outFormat = format }

// SetCaller enables or disables caller info in log output
func (l *Logger) SetCaller(enable bool) { l.caller = enable }

// WithPrefix returns a logger sharing this one's output under a new prefix
func (l *Logger) WithPrefix(prefix string) *Logger {
	c := *l
	c.prefix = prefix
	return &c
}

// With returns a logger that attaches the given fields to every message
func (l *Logger) With(fields Fields) *Logger {
	c := *l
	c.fields = l.fields.merge(fields)
	return &c
}

// WithField returns an Entry with the given field
func (l *Logger) WithField(key string, value interface{}) *Entry {
	return &Entry{logger: l, fields: Fields{key: value}}
}

// WithFields returns an Entry with the given fields
func (l *Logger) WithFields(fields Fields) *Entry {
	return &Entry{logger: l, fields: Fields{}.merge(fields)}
}

// WithError returns an Entry with the error field set
func (l *Logger) WithError(err error) *Entry {
	return l.WithField("error", err.Error())
}

// Debug logs a message at DEBUG level
func (l *Logger) Debug(msg string, args ...interface{}) { l.output(2, DEBUG, msg, args, nil) }

// Info logs a message at INFO level
func (l *Logger) Info(msg string, args ...interface{}) { l.output(2, INFO, msg, args, nil) }

// Warn logs a message at WARN level
func (l *Logger) Warn(msg string, args ...interface{}) { l.output(2, WARN, msg, args, nil) }

// Error logs a message at ERROR level
func (l *Logger) Error(msg string, args ...interface{}) { l.output(2, ERROR, msg, args, nil) }

// output formats and writes one message. skip is the runtime.Caller depth
// of the user call site as seen from output.
func (l *Logger) output(skip int, level LogLevel, msg string, args []interface{}, fields Fields) {
	if level < l.level {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	caller := ""
	if l.caller {
		caller = callerAt(skip + 1)
	}
	all := l.fields.merge(fields)

	var line string
	if l.outFormat == FormatJSON {
		line = l.formatJSON(level, msg, caller, all)
	} else {
		line = l.formatText(level, msg, caller, all)
	}

	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	fmt.Fprint(l.out.w, line)
}

// callerAt returns "file:line" for the given stack depth
func callerAt(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown:0"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

func (l *Logger) formatText(level LogLevel, msg, caller string, fields Fields) string {
	var sb strings.Builder
	sb.WriteString(time.Now().Format(l.timeFormat))
	fmt.Fprintf(&sb, " [%-5s] ", level.String())
	if l.colorize {
		sb.WriteString(ansiColors[level])
	}
	sb.WriteString(l.prefix)
	if l.colorize {
		sb.WriteString(ansiReset)
	}
	sb.WriteString(": ")
	sb.WriteString(msg)
	if caller != "" {
		sb.WriteString(" (")
		sb.WriteString(caller)
		sb.WriteString(")")
	}
	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s=%v", k, fields[k])
		}
		sb.WriteString("}")
	}
	sb.WriteString("\n")
	return sb.String()
}

// JSONLogEntry is the structure for JSON formatted log entries
type JSONLogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Logger    string                 `json:"logger"`
	Message   string                 `json:"message"`
	Caller    string                 `json:"caller,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

func (l *Logger) formatJSON(level LogLevel, msg, caller string, fields Fields) string {
	data, err := json.Marshal(JSONLogEntry{
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Level:     level.String(),
		Logger:    l.prefix,
		Message:   msg,
		Caller:    caller,
		Fields:    fields,
	})
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal log entry: %v"}`+"\n", err)
	}
	return string(data) + "\n"
}

// Entry is a pending log message with fields attached
type Entry struct {
	logger *Logger
	fields Fields
}

// WithField adds a field to the entry
func (e *Entry) WithField(key string, value interface{}) *Entry {
	return &Entry{logger: e.logger, fields: e.fields.merge(Fields{key: value})}
}

// WithFields adds multiple fields to the entry
func (e *Entry) WithFields(fields Fields) *Entry {
	return &Entry{logger: e.logger, fields: e.fields.merge(fields)}
}

// WithError adds an error field to the entry
func (e *Entry) WithError(err error) *Entry {
	return e.WithField("error", err.Error())
}

// Debug logs at DEBUG level with fields
func (e *Entry) Debug(msg string) { e.logger.output(2, DEBUG, msg, nil, e.fields) }

// Info logs at INFO level with fields
func (e *Entry) Info(msg string) { e.logger.output(2, INFO, msg, nil, e.fields) }

// Warn logs at WARN level with fields
func (e *Entry) Warn(msg string) { e.logger.output(2, WARN, msg, nil, e.fields) }

// Error logs at ERROR level with fields
func (e *Entry) Error(msg string) { e.logger.output(2, ERROR, msg, nil, e.fields) }

// Package-level functions using the default logger

// SetDefaultLogger replaces the process-wide default logger
func SetDefaultLogger(logger *Logger) {
	defaultMu.Lock()
	defaultLogger = logger
	defaultMu.Unlock()
}

// GetLogger returns the default logger under the given prefix
func GetLogger(prefix string) *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New("limitxy")
		_ = ConfigureFromEnv(defaultLogger)
	}
	if prefix == "" {
		return defaultLogger
	}
	return defaultLogger.WithPrefix(prefix)
}
