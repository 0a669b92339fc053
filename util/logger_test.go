package util

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	logger, cleanup := NewLogger(zapcore.WarnLevel)
	defer cleanup()

	require.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.Same(t, logger, zap.L())
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core))

	ctx := SubscriptionIdToCtx(CorrelationIdToCtx(context.Background(), "req-7"), "sub-3")
	l.Debug(ctx, "debug", "topic", "orders")
	l.Info(context.Background(), "info")
	l.Warn(ctx, "warn")
	l.Error(ctx, "error", "sequence", 4)

	require.Equal(t, 4, logs.Len())
	entries := logs.All()
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "orders", fields["topic"])
	assert.Equal(t, "req-7", fields["correlation_id"])
	assert.Equal(t, "sub-3", fields["subscription_id"])

	assert.Empty(t, entries[1].ContextMap())
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, int64(4), entries[3].ContextMap()["sequence"])
}

func TestZapLogger_Nil(t *testing.T) {
	assert.NotPanics(t, func() { NewZapLogger(nil).Info(context.Background(), "quiet") })
}
