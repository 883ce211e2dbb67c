package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/couchcryptid/humidity-adviser/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_Levels(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		level   string
		enabled slog.Level
		dropped slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 4},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warning", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"bogus", slog.LevelInfo, slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := NewLogger(&config.Config{LogLevel: tt.level, LogFormat: "json"})
			assert.True(t, logger.Enabled(context.Background(), tt.enabled))
			assert.False(t, logger.Enabled(context.Background(), tt.dropped))
		})
	}
}

func TestNewLogger_SetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "info", LogFormat: "text"})
	assert.Same(t, logger, slog.Default())
}
