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

func TestNewWritesToOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiltwater.log")
	cfg := DefaultConfig()
	cfg.Format = "json"
	cfg.Output = path

	l, err := New(cfg)
	require.NoError(t, err)
	l.Debug("hidden")
	l.Info("started", zap.String("engine", "ripple"))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"started"`)
	assert.Contains(t, string(data), `"engine":"ripple"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"level", Config{Level: "loud"}},
		{"format", Config{Format: "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestNewDevelopment(t *testing.T) {
	cfg := Config{Level: "debug", Development: true, Output: filepath.Join(t.TempDir(), "dev.log")}
	l, err := New(cfg)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestComponent(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	Component(zap.New(core), "relay").Info("listening")

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "relay", logs[0].ContextMap()["component"])

	assert.NotPanics(t, func() { Component(nil, "x").Info("dropped") })
}
