package logger

import (
	"path/filepath"
	"testing"

	"github.com/storecrew/storecrew/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerStdout(t *testing.T) {
	cfg := &config.LoggerConfig{}
	l, err := NewLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, l)

	// defaults applied
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
}

func TestNewLoggerFileOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.LoggerConfig{
		Output:   "file",
		FilePath: filepath.Join(dir, "logs", "apiserver.log"),
		Format:   "console",
		Level:    "debug",
	}
	l, err := NewLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, l)
	l.Info("hello")
	_ = l.Sync()
}

func TestGetLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, getLogLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, getLogLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, getLogLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, getLogLevel("bogus"))
}
