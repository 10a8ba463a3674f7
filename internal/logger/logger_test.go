package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel(" warning "))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestNewWritesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	log, err := New(Config{Level: "info", File: FileConfig{Enabled: true, Path: dir}})
	require.NoError(t, err)
	log.Info("hello")
	_ = log.Sync()

	info, err := os.Stat(filepath.Join(dir, defaultFileName))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestForSessionAddsField(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ForSession(zap.New(core), "abc").Info("connected")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].ContextMap()["session_id"])
}
