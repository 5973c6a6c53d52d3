// Package logger holds the process-wide zap logger.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the shared logger. It discards everything until Init is called.
var Log = zap.NewNop()

// Init builds Log. With a log file the production (JSON) encoder is used and
// entries go to both the file and stdout; otherwise the console encoder is used
// unless format is "json". Unknown levels fall back to info.
func Init(level, logFile string, format ...string) error {
	var config zap.Config

	switch {
	case logFile != "":
		config = zap.NewProductionConfig()
		config.OutputPaths = []string{logFile, "stdout"}
	case len(format) > 0 && format[0] == "json":
		config = zap.NewProductionConfig()
	default:
		config = zap.NewDevelopmentConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(lvl)

	built, err := config.Build()
	if err != nil {
		return err
	}
	Log = built

	return nil
}

// Named returns a child of Log tagged with component.
func Named(component string) *zap.Logger {
	return Log.Named(component)
}

// Sync flushes buffered entries.
func Sync() error {
	if Log != nil {
		return Log.Sync()
	}
	return nil
}
