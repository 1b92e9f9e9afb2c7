package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the session logger. With a log directory it writes a
// timestamped file at debug level (stderr is unusable once the terminal
// is raw); with --verbose it logs to stderr; otherwise it is a nop.
func newLogger(logDir string, verbose bool) (*zap.Logger, func(), error) {
	if logDir != "" {
		return newFileLogger(logDir)
	}
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		logger, err := cfg.Build()
		if err != nil {
			return nil, nil, err
		}
		return logger, func() { _ = logger.Sync() }, nil
	}
	return zap.NewNop(), func() {}, nil
}

func newFileLogger(logDir string) (*zap.Logger, func(), error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, err
	}

	// Timestamped name so previous logs are never overwritten; retry on
	// collision within the same second.
	var file *os.File
	for {
		name := fmt.Sprintf("sdbg-%s.log", time.Now().Format("20060102-150405"))
		f, err := os.OpenFile(filepath.Join(logDir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			file = f
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, nil, err
		}
		time.Sleep(time.Millisecond)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	ws := &zapcore.BufferedWriteSyncer{WS: zapcore.AddSync(file)}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), ws, zap.DebugLevel)
	logger := zap.New(core, zap.AddCaller())

	cleanup := func() {
		_ = ws.Stop()
		_ = file.Close()
	}
	return logger, cleanup, nil
}
