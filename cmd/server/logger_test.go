package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	level, err = parseLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = parseLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, logger.Info, gormLevel("debug"))
	assert.Equal(t, logger.Warn, gormLevel("info"))
	assert.Equal(t, logger.Error, gormLevel("error"))
	assert.Equal(t, logger.Warn, gormLevel("verbose"))
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(&buf, "info", false)
	require.NoError(t, err)

	component(log, "storage").Debug("hidden")
	component(log, "storage").Info("storage ready", "type", "memory")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "storage ready", entry["msg"])
	assert.Equal(t, "feed-engine", entry["service"])
	assert.Equal(t, VERSION, entry["version"])
	assert.Equal(t, "storage", entry["component"])
	assert.Equal(t, "memory", entry["type"])

	_, err = newLogger(&buf, "loud", false)
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}
