package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tvshow-api/internal/config"
)

func TestNewWithWriter_JSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info().Msg("dropped")
	logger.Warn().Str("component", "test").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "test", entry["component"])
	assert.Contains(t, entry, "time")
}

func TestNewWithWriter_Console(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggingConfig{Level: "DEBUG", Format: "console", Color: false}, &buf)

	logger.Debug().Msg("visible")

	assert.Contains(t, buf.String(), "visible")
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestNewWithWriter_LevelFallback(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{level: "error", want: zerolog.ErrorLevel},
		{level: "Warn", want: zerolog.WarnLevel},
		{level: "", want: zerolog.InfoLevel},
		{level: "verbose", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWithWriter(config.LoggingConfig{Level: tt.level, Format: "json"}, &buf)
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}
