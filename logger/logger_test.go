package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole(level LogLevel) (*consoleLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return &consoleLogger{
		logLevel: level,
		metadata: make(map[string]interface{}),
		out:      &buf,
		mu:       &sync.Mutex{},
	}, &buf
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelTrace, ParseLevel("trace"))
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelWarn, ParseLevel("Warn"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelNone, ParseLevel("none"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	c, buf := newTestConsole(LevelWarn)
	c.Debug("hidden")
	c.Info("hidden")
	c.Warn("shown %d", 1)
	c.Error("shown too")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 1")
	assert.Contains(t, out, "shown too")
}

func TestConsoleLoggerMetadataAndPrefix(t *testing.T) {
	c, buf := newTestConsole(LevelTrace)
	child := c.With(map[string]interface{}{"league": "123"}).WithPrefix("matchups")
	child.Info("fetched")

	out := buf.String()
	assert.Contains(t, out, "matchups")
	assert.Contains(t, out, `"league":"123"`)

	// parent must be unaffected
	buf.Reset()
	c.Info("plain")
	assert.NotContains(t, buf.String(), "league")
}

func TestColorConstantsAreEscapeSequences(t *testing.T) {
	colors := []string{Reset, Red, Green, Magenta, BlueBold, MagentaBold,
		RedBold, YellowBold, WhiteBold, CyanBold, Gray, Purple}
	for _, c := range colors {
		assert.True(t, strings.HasPrefix(c, "\x1b["), "%q is not an ANSI escape", c)
		assert.True(t, strings.HasSuffix(c, "m"), "%q is not an ANSI escape", c)
	}
}

func TestJSONLoggerShape(t *testing.T) {
	var buf bytes.Buffer
	j := &jsonLogger{
		logLevel: LevelDebug,
		metadata: make(map[string]interface{}),
		out:      &buf,
		mu:       &sync.Mutex{},
	}
	j.With(map[string]interface{}{"week": 3}).Debug("cache %s", "miss")

	line := strings.TrimSpace(buf.String())
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "DEBUG", entry["severity"])
	assert.Equal(t, "cache miss", entry["message"])
	assert.Equal(t, float64(3), entry["week"])
	assert.NotEmpty(t, entry["ts"])
}

func TestTestLoggerRecordsEntries(t *testing.T) {
	l := NewTestLogger()
	l.Info("hello %s", "world")
	l.Error("boom")

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "INFO", entries[0].Severity)
	assert.Equal(t, "hello world", entries[0].Message)
	assert.Equal(t, "ERROR", entries[1].Severity)
}
