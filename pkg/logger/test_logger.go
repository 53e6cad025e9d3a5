package logger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// LogEntry is one captured log call
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
	Error   error
}

// TestLogger captures log calls in memory. Loggers derived with WithField,
// WithFields or WithError record into the same capture as their parent, so a
// test can hand a TestLogger to a component and inspect everything it logged.
type TestLogger struct {
	capture *capture
	fields  map[string]interface{}
	err     error
}

type capture struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewTestLogger creates an empty capturing logger
func NewTestLogger() *TestLogger {
	return &TestLogger{capture: &capture{}}
}

func (l *TestLogger) Debug(msg string) { l.record("DEBUG", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.record("INFO", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.record("WARN", msg, nil) }
func (l *TestLogger) Error(msg string) { l.record("ERROR", msg, nil) }
func (l *TestLogger) Fatal(msg string) { l.record("FATAL", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.record("DEBUG", msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.record("INFO", msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.record("WARN", msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.record("ERROR", msg, fields)
}

// FatalWithFields records the call; unlike the real logger it does not exit
func (l *TestLogger) FatalWithFields(msg string, fields map[string]interface{}) {
	l.record("FATAL", msg, fields)
}

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.derive(map[string]interface{}{key: value}, l.err)
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return l.derive(fields, l.err)
}

func (l *TestLogger) WithError(err error) Logger {
	return l.derive(nil, err)
}

func (l *TestLogger) WithContext(context.Context) Logger {
	return l
}

func (l *TestLogger) GetZerolog() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}

func (l *TestLogger) derive(fields map[string]interface{}, err error) *TestLogger {
	return &TestLogger{
		capture: l.capture,
		fields:  mergeFields(l.fields, fields),
		err:     err,
	}
}

func (l *TestLogger) record(level, msg string, fields map[string]interface{}) {
	entry := LogEntry{
		Level:   level,
		Message: msg,
		Fields:  mergeFields(l.fields, fields),
		Error:   l.err,
	}

	l.capture.mu.Lock()
	l.capture.entries = append(l.capture.entries, entry)
	l.capture.mu.Unlock()
}

func mergeFields(base, extra map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

// Entries returns a copy of everything captured so far
func (l *TestLogger) Entries() []LogEntry {
	l.capture.mu.Lock()
	defer l.capture.mu.Unlock()

	entries := make([]LogEntry, len(l.capture.entries))
	copy(entries, l.capture.entries)
	return entries
}

// EntriesAt returns the entries logged at level ("DEBUG", "INFO", ...)
func (l *TestLogger) EntriesAt(level string) []LogEntry {
	var filtered []LogEntry
	for _, entry := range l.Entries() {
		if entry.Level == level {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// HasMessage reports whether msg was logged at any level
func (l *TestLogger) HasMessage(msg string) bool {
	for _, entry := range l.Entries() {
		if entry.Message == msg {
			return true
		}
	}
	return false
}

// HasField reports whether any entry carries key with value
func (l *TestLogger) HasField(key string, value interface{}) bool {
	for _, entry := range l.Entries() {
		if v, ok := entry.Fields[key]; ok && v == value {
			return true
		}
	}
	return false
}

// HasError reports whether anything was logged at ERROR level
func (l *TestLogger) HasError() bool {
	return len(l.EntriesAt("ERROR")) > 0
}

// Reset drops the captured entries
func (l *TestLogger) Reset() {
	l.capture.mu.Lock()
	l.capture.entries = nil
	l.capture.mu.Unlock()
}

// String renders the capture one entry per line, for failure messages
func (l *TestLogger) String() string {
	var b strings.Builder
	for _, entry := range l.Entries() {
		fmt.Fprintf(&b, "[%s] %s", entry.Level, entry.Message)

		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
		}
		if entry.Error != nil {
			fmt.Fprintf(&b, " error=%v", entry.Error)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
