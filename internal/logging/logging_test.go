package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesUnderTaskDir(t *testing.T) {
	dir := t.TempDir()

	logger, err := New(dir, "debug")
	require.NoError(t, err)
	logger.Info("iteration started", zap.Int("iteration", 1))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(filepath.Join(dir, ".ralph", "logs", FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "iteration started")
	assert.Contains(t, string(data), `"iteration":1`)
}

func TestNewBadLevelFallsBackToInfo(t *testing.T) {
	dir := t.TempDir()

	logger, err := New(dir, "nonsense")
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("visible")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(filepath.Join(dir, ".ralph", "logs", FileName))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "visible")
}
