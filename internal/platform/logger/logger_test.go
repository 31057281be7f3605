// Package logger_test contains tests for the logger package
package logger_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/vocab-review/internal/config"
	"github.com/phrazzld/vocab-review/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// restoreDefault puts the original default logger back after the test.
func restoreDefault(t *testing.T) {
	t.Helper()
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })
}

func TestSetupLevels(t *testing.T) {
	restoreDefault(t)

	testCases := []struct {
		level       string
		wantDebug   bool
		wantInfo    bool
		wantWarning bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"INFO", false, true, true},
		{"warn", false, false, true},
		{"error", false, false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			buf := &logger.TestLogBuffer{}
			l, err := logger.SetupWithWriter(config.LogConfig{Level: tc.level, Format: "json"}, buf)
			require.NoError(t, err)
			require.NotNil(t, l)

			l.Debug("debug message")
			l.Info("info message")
			l.Warn("warn message")

			out := buf.String()
			assert.Equal(t, tc.wantDebug, strings.Contains(out, "debug message"))
			assert.Equal(t, tc.wantInfo, strings.Contains(out, "info message"))
			assert.Equal(t, tc.wantWarning, strings.Contains(out, "warn message"))
		})
	}
}

func TestSetupJSONOutput(t *testing.T) {
	restoreDefault(t)
	buf := &logger.TestLogBuffer{}

	l, err := logger.SetupWithWriter(config.LogConfig{Level: "info", Format: "json"}, buf)
	require.NoError(t, err)

	l.Info("scheduled card", slog.String("component", "review_service"), slog.Int("interval", 3))

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "scheduled card", entries[0]["msg"])
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "review_service", entries[0]["component"])
	assert.EqualValues(t, 3, entries[0]["interval"])

	assert.Same(t, l, slog.Default(), "Setup should install the default logger")
}

func TestSetupTextOutput(t *testing.T) {
	restoreDefault(t)
	buf := &logger.TestLogBuffer{}

	l, err := logger.SetupWithWriter(config.LogConfig{Level: "info", Format: "text"}, buf)
	require.NoError(t, err)

	l.Info("hello", "key", "value")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "key=value")
}

func TestSetupRejectsInvalidConfig(t *testing.T) {
	restoreDefault(t)

	_, err := logger.SetupWithWriter(config.LogConfig{Level: "verbose", Format: "json"}, &logger.TestLogBuffer{})
	assert.Error(t, err)

	_, err = logger.SetupWithWriter(config.LogConfig{Level: "info", Format: "xml"}, &logger.TestLogBuffer{})
	assert.Error(t, err)
}

func TestContextPropagation(t *testing.T) {
	t.Parallel()
	_, l := logger.NewTestLogger()
	_, fallback := logger.NewTestLogger()

	ctx := logger.WithLogger(context.Background(), l)

	assert.Same(t, l, logger.FromContext(ctx))
	assert.Same(t, l, logger.FromContextOrDefault(ctx, fallback))
	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, slog.Default(), logger.FromContext(context.Background()))

	assert.Panics(t, func() { logger.WithLogger(context.Background(), nil) })
}
