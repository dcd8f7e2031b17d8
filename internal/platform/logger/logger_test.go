// Package logger_test contains tests for the logger package
package logger_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// restoreDefault puts the original slog default back after a test that calls Setup.
func restoreDefault(t *testing.T) {
	t.Helper()
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })
}

func TestSetupWithWriterLevels(t *testing.T) {
	testCases := []struct {
		name        string
		level       string
		logDebug    bool
		logInfo     bool
		logWarn     bool
		logError    bool
		description string
	}{
		{"debug", "debug", true, true, true, true, "all levels are logged"},
		{"info", "info", false, true, true, true, "debug is suppressed"},
		{"warn", "warn", false, false, true, true, "debug and info are suppressed"},
		{"error", "error", false, false, false, true, "only errors are logged"},
		{"uppercase", "DEBUG", true, true, true, true, "level names are case-insensitive"},
		{"invalid falls back to info", "verbose", false, true, true, true, "unknown levels use info"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			restoreDefault(t)
			buf := &logger.TestLogBuffer{}

			l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: tc.level, LogFormat: "json"}, buf)
			require.NoError(t, err)
			require.NotNil(t, l)

			l.Debug("debug message")
			l.Info("info message")
			l.Warn("warn message")
			l.Error("error message")

			out := buf.String()
			assert.Equal(t, tc.logDebug, strings.Contains(out, "debug message"), tc.description)
			assert.Equal(t, tc.logInfo, strings.Contains(out, "info message"), tc.description)
			assert.Equal(t, tc.logWarn, strings.Contains(out, "warn message"), tc.description)
			assert.Equal(t, tc.logError, strings.Contains(out, "error message"), tc.description)
		})
	}
}

func TestSetupWithWriterSetsDefault(t *testing.T) {
	restoreDefault(t)
	buf := &logger.TestLogBuffer{}

	_, err := logger.SetupWithWriter(config.ServerConfig{
		LogLevel:    "info",
		LogFormat:   "json",
		Environment: "test",
	}, buf)
	require.NoError(t, err)

	slog.Info("through default", "key", "value")

	logger.AssertLogField(t, buf, "msg", "through default")
	logger.AssertLogField(t, buf, "key", "value")
	logger.AssertLogField(t, buf, "service", "taskflow-api")
	logger.AssertLogField(t, buf, "environment", "test")
}

func TestSetupWithWriterTextFormat(t *testing.T) {
	restoreDefault(t)
	buf := &logger.TestLogBuffer{}

	l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "info", LogFormat: "text"}, buf)
	require.NoError(t, err)

	l.Info("plain output", "count", 3)

	out := buf.String()
	assert.Contains(t, out, `msg="plain output"`)
	assert.Contains(t, out, "count=3")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"), "text format should not emit JSON")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel("Warn"))
	assert.Equal(t, slog.LevelError, logger.ParseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel(""))
}

func TestFromContext(t *testing.T) {
	custom, buf := logger.GetTestLogger(t)
	fallback, fallbackBuf := logger.GetTestLogger(t)

	tests := []struct {
		name    string
		ctx     context.Context
		wantBuf *logger.TestLogBuffer
	}{
		{"logger in context", logger.WithLogger(context.Background(), custom), buf},
		{"empty context uses fallback", context.Background(), fallbackBuf},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf.Reset()
			fallbackBuf.Reset()

			logger.FromContextOrDefault(tc.ctx, fallback).Info("routed")

			assert.Contains(t, tc.wantBuf.String(), "routed")
		})
	}

	// Nil fallback resolves to the default logger.
	assert.Equal(t, slog.Default(), logger.FromContextOrDefault(context.Background(), nil))
	assert.Equal(t, slog.Default(), logger.FromContext(context.Background()))
}

func TestWithRequestID(t *testing.T) {
	l, buf := logger.GetTestLogger(t)

	ctx := logger.WithLogger(context.Background(), l)
	ctx = logger.WithRequestID(ctx, "abc123")

	assert.Equal(t, "abc123", logger.RequestIDFromContext(ctx))

	logger.FromContext(ctx).Info("with trace")
	logger.AssertLogField(t, buf, "trace_id", "abc123")

	// Without a logger only the ID is stored.
	bare := logger.WithRequestID(context.Background(), "xyz")
	assert.Equal(t, "xyz", logger.RequestIDFromContext(bare))
	assert.Empty(t, logger.RequestIDFromContext(context.Background()))
}
