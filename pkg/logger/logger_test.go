package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "smeerp/internal/core/context"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{zap.New(core).Sugar()}, logs
}

func TestFromContext_AddsRequestFields(t *testing.T) {
	log, logs := observed()
	ctx := WithLogger(context.Background(), log)
	ctx = appctx.WithTrace(ctx, &appctx.RequestTrace{TraceID: "t-1", RequestID: "r-1"})
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: "u-1"})

	Info(ctx, "scrap validated", "scrap_id", "s-1")

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, "r-1", fields["request_id"])
	assert.Equal(t, "u-1", fields["user_id"])
	assert.Equal(t, "s-1", fields["scrap_id"])
}

func TestWithContext_NoValues(t *testing.T) {
	log, logs := observed()

	log.WithContext(context.Background()).WithComponent("worker").Warnw("outbox backlog")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, map[string]any{"component": "worker"}, entries[0].ContextMap())
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	log, err := New(Config{Level: "chatty", OutputPaths: []string{"stderr"}, Service: "smeerp-api"})
	assert.NoError(t, err)
	assert.False(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Desugar().Core().Enabled(zapcore.InfoLevel))
}
