package logger

import (
	"fmt"
	"os"
	"sync"
)

type TestLogEntry struct {
	Severity string
	Message  string
}

// TestLogger records every entry so tests can assert on what was logged.
type TestLogger struct {
	mu       sync.Mutex
	metadata map[string]interface{}
	entries  []TestLogEntry
}

var _ Logger = (*TestLogger)(nil)

func NewTestLogger() *TestLogger {
	return &TestLogger{}
}

// Entries returns a copy of everything logged so far.
func (t *TestLogger) Entries() []TestLogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TestLogEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *TestLogger) WithPrefix(prefix string) Logger {
	return t
}

func (t *TestLogger) With(metadata map[string]interface{}) Logger {
	t.mu.Lock()
	defer t.mu.Unlock()
	kv := make(map[string]interface{}, len(t.metadata)+len(metadata))
	for k, v := range t.metadata {
		kv[k] = v
	}
	for k, v := range metadata {
		kv[k] = v
	}
	t.metadata = kv
	return t
}

func (t *TestLogger) IsLevelEnabled(level LogLevel) bool {
	return true
}

func (t *TestLogger) record(severity string, msg string, args ...interface{}) {
	formatted := msg
	if len(args) > 0 {
		formatted = fmt.Sprintf(msg, args...)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, TestLogEntry{Severity: severity, Message: formatted})
}

func (t *TestLogger) Trace(msg string, args ...interface{}) {
	t.record("TRACE", msg, args...)
}

func (t *TestLogger) Debug(msg string, args ...interface{}) {
	t.record("DEBUG", msg, args...)
}

func (t *TestLogger) Info(msg string, args ...interface{}) {
	t.record("INFO", msg, args...)
}

func (t *TestLogger) Warn(msg string, args ...interface{}) {
	t.record("WARN", msg, args...)
}

func (t *TestLogger) Error(msg string, args ...interface{}) {
	t.record("ERROR", msg, args...)
}

func (t *TestLogger) Fatal(msg string, args ...interface{}) {
	t.record("FATAL", msg, args...)
	os.Exit(1)
}
