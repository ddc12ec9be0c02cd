package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		log, err := New(&Config{Level: "info", Format: "json", Output: "stdout", TimeFormat: "2006-01-02T15:04:05.000Z07:00"})
		require.NoError(t, err)
		assert.NotNil(t, log)
		assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("console format", func(t *testing.T) {
		log, err := New(&Config{Level: "debug", Format: "console", Output: "stderr", TimeFormat: "15:04:05"})
		require.NoError(t, err)
		assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("writes to a file sink", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "inventory.log")
		log, err := New(&Config{Level: "info", Format: "json", Output: path, TimeFormat: "2006-01-02"})
		require.NoError(t, err)

		log.Info("stock snapshot refreshed")
		require.NoError(t, log.Sync())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "stock snapshot refreshed")
	})
}

func TestLevelFor(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":     zapcore.DebugLevel,
		"info":      zapcore.InfoLevel,
		"warn":      zapcore.WarnLevel,
		"warning":   zapcore.WarnLevel,
		"error":     zapcore.ErrorLevel,
		"fatal":     zapcore.FatalLevel,
		"ERROR":     zapcore.ErrorLevel,
		"":          zapcore.InfoLevel,
		"gibberish": zapcore.InfoLevel,
	}
	for input, want := range cases {
		assert.Equal(t, want, levelFor(input), "level %q", input)
	}
}

func TestSinkFor(t *testing.T) {
	t.Run("defaults to stdout when empty", func(t *testing.T) {
		assert.NotNil(t, sinkFor(""))
	})

	t.Run("degrades to stdout for an unopenable path", func(t *testing.T) {
		assert.NotNil(t, sinkFor("/nonexistent-dir/inventory.log"))
	})

	t.Run("creates the file when missing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "new.log")
		sink := sinkFor(path)
		require.NotNil(t, sink)
		_, err := os.Stat(path)
		assert.NoError(t, err)
	})
}

func TestSync(t *testing.T) {
	log, err := New(&Config{Level: "info", Format: "json", Output: filepath.Join(t.TempDir(), "sync.log"), TimeFormat: "2006-01-02"})
	require.NoError(t, err)
	assert.NoError(t, Sync(log))
}
