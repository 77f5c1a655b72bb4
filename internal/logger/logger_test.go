package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":  zapcore.DebugLevel,
		"info":   zapcore.InfoLevel,
		" WARN ": zapcore.WarnLevel,
		"error":  zapcore.ErrorLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextLogger checks that names and fields travel with the context.
func TestContextLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())
	ctx = WithName(ctx, "release-merger")
	ctx = WithKV(ctx, "arch", "x86_64")

	InfoKV(ctx, "Merged input", "path", "meta.json")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "release-merger", entries[0].LoggerName)
	require.Equal(t, "Merged input", entries[0].Message)

	fields := entries[0].ContextMap()
	require.Equal(t, "x86_64", fields["arch"])
	require.Equal(t, "meta.json", fields["path"])
}

// TestFromContextFallback returns the global logger for a bare context.
func TestFromContextFallback(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestKVLevels checks that each helper writes at its own level.
func TestKVLevels(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	DebugKV(ctx, "Resolved inputs", "inputs", 2)
	InfoKV(ctx, "Merged metadata", "arch", "x86_64")
	ErrorKV(ctx, "Release merge failed", "error", "boom")

	entries := logs.All()
	require.Len(t, entries, 3)
	require.Equal(t, zapcore.DebugLevel, entries[0].Level)
	require.Equal(t, zapcore.InfoLevel, entries[1].Level)
	require.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	require.Equal(t, "boom", entries[2].ContextMap()["error"])
}
