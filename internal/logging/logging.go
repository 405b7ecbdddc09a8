// Package logging sets up the run log. The TUI owns stdout, so everything
// goes to a file under the task directory.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName is the log file written under <task-dir>/.ralph/logs/.
const FileName = "ralph.log"

// New opens a file-backed logger for the given task directory at the given
// level ("debug", "info", "warn", "error"). The caller must Sync on exit.
func New(taskDir, level string) (*zap.Logger, error) {
	logDir := filepath.Join(taskDir, ".ralph", "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{filepath.Join(logDir, FileName)}
	cfg.ErrorOutputPaths = cfg.OutputPaths
	cfg.Encoding = "json"

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// Nop returns a logger that discards everything, for tests and for callers
// that run before a task directory is known.
func Nop() *zap.Logger {
	return zap.NewNop()
}
