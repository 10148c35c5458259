package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"
)

// jsonLogger writes one JSON object per line, for hosts that collect stderr.
type jsonLogger struct {
	prefixes []string
	metadata map[string]interface{}
	logLevel LogLevel
	out      io.Writer
	mu       *sync.Mutex
}

var _ Logger = (*jsonLogger)(nil)

func (j *jsonLogger) clone() *jsonLogger {
	prefixes := make([]string, len(j.prefixes))
	copy(prefixes, j.prefixes)
	metadata := make(map[string]interface{}, len(j.metadata))
	for k, v := range j.metadata {
		metadata[k] = v
	}
	return &jsonLogger{
		prefixes: prefixes,
		metadata: metadata,
		logLevel: j.logLevel,
		out:      j.out,
		mu:       j.mu,
	}
}

func (j *jsonLogger) WithPrefix(prefix string) Logger {
	clone := j.clone()
	if !slices.Contains(clone.prefixes, prefix) {
		clone.prefixes = append(clone.prefixes, prefix)
	}
	return clone
}

func (j *jsonLogger) With(metadata map[string]interface{}) Logger {
	clone := j.clone()
	for k, v := range metadata {
		clone.metadata[k] = v
	}
	return clone
}

func (j *jsonLogger) IsLevelEnabled(level LogLevel) bool {
	return level >= j.logLevel
}

func (j *jsonLogger) log(level LogLevel, severity string, msg string, args ...interface{}) {
	if level < j.logLevel {
		return
	}
	formatted := msg
	if len(args) > 0 {
		formatted = fmt.Sprintf(msg, args...)
	}
	if len(j.prefixes) > 0 {
		formatted = strings.Join(j.prefixes, " ") + " " + formatted
	}
	entry := make(map[string]interface{}, len(j.metadata)+3)
	for k, v := range j.metadata {
		entry[k] = v
	}
	entry["ts"] = time.Now().Format(time.RFC3339Nano)
	entry["severity"] = severity
	entry["message"] = formatted
	buf, err := json.Marshal(entry)
	if err != nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.out.Write(append(buf, '\n'))
}

func (j *jsonLogger) Trace(msg string, args ...interface{}) {
	j.log(LevelTrace, "TRACE", msg, args...)
}

func (j *jsonLogger) Debug(msg string, args ...interface{}) {
	j.log(LevelDebug, "DEBUG", msg, args...)
}

func (j *jsonLogger) Info(msg string, args ...interface{}) {
	j.log(LevelInfo, "INFO", msg, args...)
}

func (j *jsonLogger) Warn(msg string, args ...interface{}) {
	j.log(LevelWarn, "WARN", msg, args...)
}

func (j *jsonLogger) Error(msg string, args ...interface{}) {
	j.log(LevelError, "ERROR", msg, args...)
}

func (j *jsonLogger) Fatal(msg string, args ...interface{}) {
	j.log(LevelError, "ERROR", msg, args...)
	os.Exit(1)
}

// NewJSONLogger returns a new Logger instance which will emit newline
// delimited JSON to stderr
func NewJSONLogger(levels ...LogLevel) Logger {
	level := GetLevelFromEnv()
	if len(levels) > 0 {
		level = levels[0]
	}
	return &jsonLogger{
		logLevel: level,
		metadata: make(map[string]interface{}),
		out:      os.Stderr,
		mu:       &sync.Mutex{},
	}
}
