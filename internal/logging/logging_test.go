package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelWarn},
		{"loud", slog.LevelWarn},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in, slog.LevelWarn), "ParseLevel(%q)", tt.in)
	}
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	assert.Equal(t, slog.LevelDebug, LevelFromEnv(slog.LevelError))

	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, slog.LevelError, LevelFromEnv(slog.LevelError))
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelWarn)

	log.Info("hidden")
	log.Warn("month already recorded", "month", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "month already recorded")
	assert.Contains(t, out, "month=3")
	assert.NotContains(t, out, "\x1b[", "non-terminal writers get no color codes")
}
