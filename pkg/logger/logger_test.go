package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		logFile   string
		format    []string
		wantLevel zapcore.Level
	}{
		{name: "debug console", level: "debug", wantLevel: zapcore.DebugLevel},
		{name: "warn console", level: "warn", wantLevel: zapcore.WarnLevel},
		{name: "json format", level: "error", format: []string{"json"}, wantLevel: zapcore.ErrorLevel},
		{name: "invalid level defaults to info", level: "loud", wantLevel: zapcore.InfoLevel},
		{name: "log file", level: "info", logFile: filepath.Join(t.TempDir(), "sim.log"), wantLevel: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Log = nil

			require.NoError(t, Init(tt.level, tt.logFile, tt.format...))
			require.NotNil(t, Log)

			assert.True(t, Log.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, Log.Core().Enabled(tt.wantLevel-1))
			}

			_ = Log.Sync()
		})
	}
}

func TestInitWithLogFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "app.log")

	require.NoError(t, Init("info", logFile))

	Log.Info("test message")
	_ = Sync()

	_, err := os.Stat(logFile)
	assert.NoError(t, err)
}

func TestSync_NilLogger(t *testing.T) {
	Log = nil
	assert.NotPanics(t, func() { _ = Sync() })
	Log = zap.NewNop()
}

func TestNamed(t *testing.T) {
	Log = zap.NewNop()
	assert.NotNil(t, Named("jobs"))
}
