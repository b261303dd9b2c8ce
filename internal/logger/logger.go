package logger

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey string

const LoggerKey = contextKey("logger")

var globalLogger *zap.SugaredLogger

// Init initializes the global logger based on configuration.
// Logs go to a rotating file when cfg.Enabled and cfg.Path are set, to
// stderr when console is true, and nowhere otherwise. Stdout is left for
// reports.
func Init(cfg Config, console bool) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.WarnLevel
	}

	var writeSyncer zapcore.WriteSyncer
	switch {
	case cfg.Enabled && cfg.Path != "":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			globalLogger = newConsole(level)
			globalLogger.Warnf("failed to create log directory: %v", err)
			return
		}
		writeSyncer = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	case console:
		writeSyncer = zapcore.Lock(os.Stderr)
	default:
		globalLogger = zap.NewNop().Sugar()
		return
	}

	core := zapcore.NewCore(newEncoder(), writeSyncer, level)
	globalLogger = zap.New(core, zap.AddCaller()).Sugar()
	globalLogger.Debugw("logging initialized", "level", level.String(), "path", cfg.Path)
}

func newEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func newConsole(level zapcore.Level) *zap.SugaredLogger {
	core := zapcore.NewCore(newEncoder(), zapcore.Lock(os.Stderr), level)
	return zap.New(core).Sugar()
}

// Sync flushes any buffered log entries.
func Sync() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}

// Get returns the logger from context or the global logger
func Get(ctx context.Context) *zap.SugaredLogger {
	if ctx != nil {
		if logger, ok := ctx.Value(LoggerKey).(*zap.SugaredLogger); ok {
			return logger
		}
	}
	if globalLogger == nil {
		return newConsole(zapcore.WarnLevel)
	}
	return globalLogger
}

// WithContext adds logger to context
func WithContext(ctx context.Context, logger *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}
