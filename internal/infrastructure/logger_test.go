package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netmobcli/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "test.log")
	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())

	logger.Info("test message", "key", "value")
	logger.Debug("hidden")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestInitializeLogger_OnlyOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "console"})
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "console"})
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestInitializeLogger_BadPath(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := InitializeLogger(config.LoggingConfig{Output: "file", FilePath: filepath.Join(blocker, "x.log")})
	assert.Error(t, err)
}

func TestTraceHandler_RunID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug")

	ctx := WithRunID(context.Background(), "run-123")
	logger.InfoContext(ctx, "with run")
	logger.With("component", "test").DebugContext(context.Background(), "without run")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "run-123", first["run_id"])
	assert.NotContains(t, second, "run_id")
	assert.Equal(t, "test", second["component"])
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestRunID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RunIDFromContext(ctx))

	ctx = EnsureRunID(ctx)
	id := RunIDFromContext(ctx)
	assert.Len(t, id, 36)

	assert.Equal(t, id, RunIDFromContext(EnsureRunID(ctx)), "existing id is kept")
	assert.NotEqual(t, GenerateRunID(), GenerateRunID())
}
