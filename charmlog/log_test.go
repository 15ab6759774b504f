package charmlog_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjamonnguyen/pomodo/charmlog"
)

func TestNewLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := charmlog.NewLogger(charmlog.Options{Writer: &buf, Level: "WARN"})

	l.Info("hidden")
	l.Warn("shown", "taskID", 7)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "taskID=7")
}

func TestNewLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := charmlog.NewLogger(charmlog.Options{Writer: &buf, Level: "LOUD"})

	l.Debug("debug line")
	l.Info("info line")

	assert.NotContains(t, buf.String(), "debug line")
	assert.Contains(t, buf.String(), "info line")
}

func TestOpenFile_AppendsToLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "pomodo.log")

	l, closer, err := charmlog.OpenFile(logPath, "DEBUG")
	require.NoError(t, err)
	l.Debug("first")
	require.NoError(t, closer.Close())

	l, closer, err = charmlog.OpenFile(logPath, "DEBUG")
	require.NoError(t, err)
	l.Debug("second")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "first")
	assert.Contains(t, string(b), "second")
}
