package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"off", "dev", "prod", "PROD"} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		require.NotNil(t, l.SugaredLogger, mode)
	}
}

func TestWrapKeepsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := Wrap(zap.New(core)).With("session_id", "abc")

	l.Debug("item drawn", "index", 3)
	l.Info("deck extracted", "items", 2)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "item drawn", entries[0].Message)
	assert.Equal(t, map[string]any{"session_id": "abc", "index": int64(3)}, entries[0].ContextMap())
	assert.Equal(t, int64(2), entries[1].ContextMap()["items"])
}

func TestWrapNil(t *testing.T) {
	l := Wrap(nil)
	l.Warn("discarded")
	l.Sync()
}
