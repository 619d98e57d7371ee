package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	l := NewLogger()
	l.SetOutput(buf)
	return l
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	l.SetLevel(WARN)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
}

func TestLoggerTextFormatIncludesFields(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	l.Info("model loaded",
		Component("resolver"),
		String("model", "HousePricePredictor"),
		Int("version", 3),
	)

	out := buf.String()
	assert.Contains(t, out, "[INFO] model loaded")
	assert.Contains(t, out, "component=resolver")
	assert.Contains(t, out, "model=HousePricePredictor")
	assert.Contains(t, out, "version=3")
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	l.SetFormat("json")

	l.Info("training finished", Float("rmse", 1234.5))

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "training finished", entry.Message)
	assert.Equal(t, 1234.5, entry.Fields["rmse"])
}

func TestLoggerErrorFieldCaptured(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	l.Error("training failed", assert.AnError)

	assert.Contains(t, buf.String(), assert.AnError.Error())
}

func TestSetFileOutputCreatesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "server.log")

	l := NewLogger()
	require.NoError(t, l.SetFileOutput(logPath, 24*time.Hour, time.Hour, false))
	defer l.Close()

	l.Info("hello")

	matches, err := filepath.Glob(logPath + "-*")
	require.NoError(t, err)
	assert.NotEmpty(t, matches)
}
