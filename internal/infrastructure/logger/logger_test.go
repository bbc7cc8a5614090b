package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger("info", "json", &buf)

	log.Info("tagging finished", zap.Int64("user_id", 42))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "tagging finished", entry["message"])
	assert.Equal(t, float64(42), entry["user_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger("warn", "json", &buf)

	log.Info("hidden")
	log.Warn("shown")
	require.NoError(t, log.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger("verbose", "console", &buf)

	log.Debug("debug line")
	log.Info("info line")
	require.NoError(t, log.Sync())

	assert.NotContains(t, buf.String(), "debug line")
	assert.Contains(t, buf.String(), "info line")
}

func TestNew(t *testing.T) {
	assert.NotNil(t, New("debug", "json"))
}
