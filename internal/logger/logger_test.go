package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonsync/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"", zerolog.WarnLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"loud", zerolog.WarnLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestBuild_JSONConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer

	log, err := NewLoggerBuilder().
		WithConfig(config.LogConfig{Level: "info", Format: "json"}).
		WithConsole(&buf).
		Build()
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Str("component", "test").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
	assert.Contains(t, buf.String(), `"component":"test"`)
}

func TestBuild_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer

	log, err := NewLoggerBuilder().WithConsole(&buf).Build()
	require.NoError(t, err)

	log.Warn().Msg("careful")

	assert.Contains(t, buf.String(), "careful")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestBuild_FileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "jsonsync.log")

	log, err := NewLoggerBuilder().
		WithConfig(config.LogConfig{Level: "debug", Format: "json", File: logFile}).
		WithConsole(nil).
		Build()
	require.NoError(t, err)

	log.Debug().Msg("to file")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestBuild_NoWriters(t *testing.T) {
	log, err := NewLoggerBuilder().WithConsole(nil).Build()
	require.NoError(t, err)

	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}
