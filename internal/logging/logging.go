// Package logging sets up the append-only application log. The TUI
// owns the terminal, so nothing is ever written to stdout/stderr; all
// diagnostics go to a timestamped file, and only when debug mode is
// enabled.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Open returns a logger appending to path. When debug is false it
// returns a no-op logger and never touches the filesystem. The
// returned close func flushes buffered entries; call it on teardown.
func Open(path string, debug bool) (*zap.Logger, func(), error) {
	if !debug {
		return zap.NewNop(), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(f),
		zapcore.DebugLevel,
	)
	logger := zap.New(core)
	closeFn := func() {
		_ = logger.Sync()
		_ = f.Close()
	}
	return logger, closeFn, nil
}
