package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":    slog.LevelDebug,
		" DEBUG ":  slog.LevelDebug,
		"warn":     slog.LevelWarn,
		"warning":  slog.LevelWarn,
		"error":    slog.LevelError,
		"critical": slog.LevelError,
		"info":     slog.LevelInfo,
		"":         slog.LevelInfo,
		"verbose":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

func TestNewStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewStructuredLogger(&buf, "menubuilder", "v1.2.3", "warn")

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept", "menu", "TempBar")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "menubuilder", rec["module"])
	assert.Equal(t, "v1.2.3", rec["version"])
	assert.Equal(t, "TempBar", rec["menu"])
	assert.NotContains(t, rec, "source")
}

func TestSetDefaultLoggerFallsBackToEnv(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Setenv(EnvVarLogLevel, "error")
	SetDefaultLogger("menubuilder", "dev", "")
	assert.False(t, slog.Default().Enabled(t.Context(), slog.LevelWarn))

	SetDefaultLogger("menubuilder", "dev", "debug")
	assert.True(t, slog.Default().Enabled(t.Context(), slog.LevelDebug))
}

func TestNewLogLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	slog.SetDefault(NewStructuredLogger(&buf, "menubuilder", "dev", "info"))

	NewLogLogger(slog.LevelError).Print("http: TLS handshake error")
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), "TLS handshake error")
}
