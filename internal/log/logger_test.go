package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/comfort/internal/domain"
)

func fixedClock() time.Time {
	return time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
}

func TestLogger_BasicLogging(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	logger, err := New(logPath, LevelDebug)
	require.NoError(t, err)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warning message")
	logger.Error("error message")
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)

	logContent := string(content)
	require.Contains(t, logContent, "DEBUG: debug message")
	require.Contains(t, logContent, "INFO: info message")
	require.Contains(t, logContent, "WARN: warning message")
	require.Contains(t, logContent, "ERROR: error message")
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warning message")
	logger.Error("error message")

	out := buf.String()
	require.NotContains(t, out, "DEBUG")
	require.NotContains(t, out, "INFO")
	require.Contains(t, out, "WARN: warning message")
	require.Contains(t, out, "ERROR: error message")
}

func TestLogger_LineFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, LevelDebug)
	logger.now = fixedClock

	logger.Info("dispatch %s", "build")

	require.Equal(t, "[2026-10-15 09:30:00] INFO: dispatch build\n", buf.String())
}

func TestLogger_WithPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, LevelDebug)
	logger.now = fixedClock

	tagged := logger.WithPrefix("3f2c")
	tagged.Warn("plugin %q not found", "deploy")
	require.NoError(t, tagged.Close())

	require.Equal(t, "[2026-10-15 09:30:00] WARN: [3f2c] plugin \"deploy\" not found\n", buf.String())
}

func TestLogger_FilePermissions(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")
	logPath := filepath.Join(logDir, "test.log")

	logger, err := New(logPath, LevelInfo)
	require.NoError(t, err)
	logger.Info("test message")
	require.NoError(t, logger.Close())

	info, err := os.Stat(logPath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(logDir)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0700)|os.ModeDir, dirInfo.Mode())
}

func TestLogger_AppendMode(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	first, err := New(logPath, LevelInfo)
	require.NoError(t, err)
	first.Info("first message")
	require.NoError(t, first.Close())

	second, err := New(logPath, LevelInfo)
	require.NoError(t, err)
	second.Info("second message")
	require.NoError(t, second.Close())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(content), "first message")
	require.Contains(t, string(content), "second message")
}

func TestLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, LevelInfo)

	logger.Info("enabled message")
	logger.SetEnabled(false)
	logger.Info("disabled message")
	logger.SetEnabled(true)
	logger.Info("enabled again")

	out := buf.String()
	require.Contains(t, out, "enabled message")
	require.NotContains(t, out, "disabled message")
	require.Contains(t, out, "enabled again")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"Warn", LevelWarn},
		{"error", LevelError},
		{"unknown", LevelWarn},
		{"", LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestLogger_Writer(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, LevelDebug)

	_, _ = logger.Writer(LevelInfo).Write([]byte("message from writer\n"))

	require.True(t, strings.HasSuffix(buf.String(), "INFO: message from writer\n"))
}

func TestLogger_NilSafe(t *testing.T) {
	var logger *Logger

	require.NoError(t, logger.Close())
	logger.SetEnabled(true)
	logger.Debug("test")
	logger.Error("test")
	require.IsType(t, NopLogger{}, logger.WithPrefix("x"))
}

func TestNopLogger(t *testing.T) {
	var logger domain.Logger = NopLogger{}

	logger.Debug("dropped %d", 1)
	logger.Error("dropped %d", 2)
	require.NoError(t, logger.Close())
}
