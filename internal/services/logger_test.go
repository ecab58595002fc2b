package services

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewProductionLogger("chat", &buf, slog.LevelInfo, true)

	logger.Info("stream finished", "thread_id", 7, "status", "completed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "stream finished", entry["msg"])
	assert.Equal(t, "chat", entry["service"])
	assert.EqualValues(t, 7, entry["thread_id"])
	assert.Equal(t, "completed", entry["status"])
}

func TestProductionLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewProductionLogger("chat", &buf, slog.LevelWarn, false)

	logger.Debug("hidden")
	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown", "key", "value")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "key=value")
	assert.Contains(t, buf.String(), "service=chat")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLoggerSilentUnderTest(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	_, ok := NewLogger("chat").(*NoOpLogger)
	assert.True(t, ok)
}

func TestWithScopesProductionLogger(t *testing.T) {
	var buf bytes.Buffer
	base := NewProductionLogger("llamachat", &buf, slog.LevelInfo, false)

	With(base, "component", "chat").Info("stream started")
	assert.Contains(t, buf.String(), "service=llamachat")
	assert.Contains(t, buf.String(), "component=chat")

	noop := &NoOpLogger{}
	assert.Same(t, noop, With(noop, "component", "chat"))
}
