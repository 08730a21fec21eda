package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"nonsense", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.log")
	log, err := New(&Config{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)
	log.Info("hello")
	require.NoError(t, log.Sync())
	assert.FileExists(t, path)
}

func TestNew_NilConfigUsesDefaults(t *testing.T) {
	log, err := New(nil)
	require.NoError(t, err)
	assert.NotNil(t, log)
}
