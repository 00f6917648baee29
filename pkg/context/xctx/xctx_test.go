package xctx_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xstage/pkg/context/xctx"
)

// =============================================================================
// Stage 字段测试
// =============================================================================

func TestStageID(t *testing.T) {
	t.Parallel()

	ctx, err := xctx.WithStageID(context.Background(), "stage-1")
	require.NoError(t, err)
	assert.Equal(t, "stage-1", xctx.StageID(ctx))

	got, err := xctx.RequireStageID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "stage-1", got)

	_, err = xctx.RequireStageID(context.Background())
	assert.ErrorIs(t, err, xctx.ErrMissingStageID)
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	ctx, err := xctx.WithIdentity(context.Background(), "3fa9c0d1e2b4")
	require.NoError(t, err)
	assert.Equal(t, "3fa9c0d1e2b4", xctx.Identity(ctx))

	_, err = xctx.WithIdentity(context.Background(), "sk-live-0123456789abcdef")
	assert.ErrorIs(t, err, xctx.ErrIdentityTooLong)

	_, err = xctx.RequireIdentity(context.Background())
	assert.ErrorIs(t, err, xctx.ErrMissingIdentity)
}

//nolint:staticcheck // 有意传入 nil context
func TestNilContext(t *testing.T) {
	t.Parallel()

	var nilCtx context.Context

	_, err := xctx.WithStageID(nilCtx, "x")
	assert.ErrorIs(t, err, xctx.ErrNilContext)
	_, err = xctx.WithIdentity(nilCtx, "x")
	assert.ErrorIs(t, err, xctx.ErrNilContext)
	_, err = xctx.WithTraceID(nilCtx, "x")
	assert.ErrorIs(t, err, xctx.ErrNilContext)
	_, err = xctx.EnsureTraceID(nilCtx)
	assert.ErrorIs(t, err, xctx.ErrNilContext)

	assert.Empty(t, xctx.StageID(nilCtx))
	assert.Empty(t, xctx.Identity(nilCtx))
	assert.Empty(t, xctx.TraceID(nilCtx))
	assert.Nil(t, xctx.LogAttrs(nilCtx))
}

// =============================================================================
// Trace 字段测试
// =============================================================================

func TestEnsureTraceID(t *testing.T) {
	t.Parallel()

	ctx, err := xctx.EnsureTraceID(context.Background())
	require.NoError(t, err)
	id := xctx.TraceID(ctx)
	assert.Len(t, id, xctx.TraceIDSize*2)

	again, err := xctx.EnsureTraceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, xctx.TraceID(again), "已存在的 trace ID 不应被替换")
}

// =============================================================================
// slog 属性测试
// =============================================================================

func TestLogAttrs(t *testing.T) {
	t.Parallel()

	assert.Nil(t, xctx.LogAttrs(context.Background()))

	ctx, _ := xctx.WithStageID(context.Background(), "s-1")
	ctx, _ = xctx.WithIdentity(ctx, "abcdef012345")
	ctx, _ = xctx.WithTraceID(ctx, "t-1")
	ctx, _ = xctx.WithSpanID(ctx, "p-1")
	ctx, _ = xctx.WithTraceFlags(ctx, "01")

	attrs := xctx.LogAttrs(ctx)
	want := []slog.Attr{
		slog.String(xctx.KeyStageID, "s-1"),
		slog.String(xctx.KeyIdentity, "abcdef012345"),
		slog.String(xctx.KeyTraceID, "t-1"),
		slog.String(xctx.KeySpanID, "p-1"),
		slog.String(xctx.KeyTraceFlags, "01"),
	}
	assert.Equal(t, want, attrs)
}

// =============================================================================
// 并发安全测试
// =============================================================================

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	ctx, _ := xctx.WithStageID(context.Background(), "stage")
	ctx, _ = xctx.WithTraceID(ctx, "trace")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "stage", xctx.StageID(ctx))
			assert.Equal(t, "trace", xctx.TraceID(ctx))
		}()
	}
	wg.Wait()
}
