package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Debug, ParseLevel("DEBUG"))
	assert.Equal(t, Warn, ParseLevel("warning"))
	assert.Equal(t, Error, ParseLevel(" error "))
	assert.Equal(t, Info, ParseLevel(""))
	assert.Equal(t, Info, ParseLevel("verbose"))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("console"))
}

func TestZapLogger_WithFieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZap(zap.New(core)).With(map[string]any{"check_id": "c-1"})

	l.Warn("workflow failed", map[string]any{
		"drug":  "アスピリン",
		"error": errors.New("boom"),
		"":      "ignored",
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "workflow failed", entries[0].Message)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "c-1", ctx["check_id"])
	assert.Equal(t, "アスピリン", ctx["drug"])
	assert.Equal(t, "boom", ctx["error"])
	assert.NotContains(t, ctx, "")
}

func TestZapLogger_RespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewZap(zap.New(core))

	l.Debug("hidden", nil)
	l.Info("shown", nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown", logs.All()[0].Message)
}
