package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"salesdesk/internal/core/config"
)

func TestToWriter_TrimsNewlines(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := ToWriter(zap.New(core), zapcore.InfoLevel)

	n, err := w.Write([]byte("[GIN-debug] GET /health\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "[GIN-debug] GET /health", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
}

func TestFromConfig_InvalidLevelFallsBackToInfo(t *testing.T) {
	l, cleanup := FromConfig(config.Log{
		Level: "verbose",
		JSON:  true,
		Rotate: config.Rotate{
			Filename:  filepath.Join(t.TempDir(), "app.log"),
			MaxSizeMB: 1,
		},
	})
	defer cleanup()

	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}
