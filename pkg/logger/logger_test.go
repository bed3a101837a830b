package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func resetGlobal(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		mu.Lock()
		globalLogger = zap.NewNop()
		mu.Unlock()
	})
}

func TestInitConfiguresGlobalLogger(t *testing.T) {
	resetGlobal(t)

	require.NoError(t, Init("debug"))
	require.True(t, Logger().Core().Enabled(zap.DebugLevel))
}

func TestInitUnknownLevelFallsBackToInfo(t *testing.T) {
	resetGlobal(t)

	require.NoError(t, Init("shouting"))
	require.True(t, Logger().Core().Enabled(zap.InfoLevel))
	require.False(t, Logger().Core().Enabled(zap.DebugLevel))
}

func TestWithModuleAttachesModuleField(t *testing.T) {
	resetGlobal(t)

	core, recorded := observer.New(zap.InfoLevel)
	globalLogger = zap.New(core)

	WithModule("api").Info("module test")

	entries := recorded.All()
	require.Len(t, entries, 1)
	require.Equal(t, "api", entries[0].ContextMap()["module"])
}
