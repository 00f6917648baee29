package xmetrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/omeyang/xstage/pkg/context/xctx"
)

// ============================================================================
// 测试辅助函数
// ============================================================================

func newTestObserver(t *testing.T) (Observer, *tracetest.InMemoryExporter, *sdkmetric.ManualReader) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	obs, err := NewOTelObserver(WithTracerProvider(tp), WithMeterProvider(mp), WithInstrumentationName("test"))
	require.NoError(t, err)
	return obs, exporter, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

// ============================================================================
// OTel Observer 测试
// ============================================================================

func TestOTelObserverSuccess(t *testing.T) {
	obs, exporter, reader := newTestObserver(t)

	ctx, span := obs.Start(context.Background(), SpanOptions{
		Component: "xpipeline",
		Operation: "stage",
		Attrs:     []Attr{String("mode", "memory"), Int64("size", 12), Bool("spill", false)},
	})
	assert.NotEmpty(t, xctx.TraceID(ctx), "span context 应同步到 xctx")
	assert.NotEmpty(t, xctx.SpanID(ctx))

	span.End(Result{Outcome: "memory", Bytes: 12})
	span.End(Result{Err: errors.New("ignored")})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "xpipeline.stage", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)

	metrics := collect(t, reader)
	total, ok := metrics[metricOperationTotal].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, total.DataPoints, 1)
	assert.Equal(t, int64(1), total.DataPoints[0].Value, "End 幂等，只记录一次")
	outcome, _ := total.DataPoints[0].Attributes.Value(attribute.Key("outcome"))
	assert.Equal(t, "memory", outcome.AsString())

	bytes, ok := metrics[metricStagedBytes].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, bytes.DataPoints, 1)
	assert.Equal(t, int64(12), bytes.DataPoints[0].Sum)
}

func TestOTelObserverError(t *testing.T) {
	obs, exporter, reader := newTestObserver(t)

	_, span := obs.Start(context.Background(), SpanOptions{})
	span.End(Result{Err: errors.New("secret detected"), Outcome: "secret_detected"})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "unknown.unknown", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)

	metrics := collect(t, reader)
	total := metrics[metricOperationTotal].Data.(metricdata.Sum[int64])
	status, _ := total.DataPoints[0].Attributes.Value(attribute.Key("status"))
	assert.Equal(t, string(StatusError), status.AsString())
	_, recorded := metrics[metricStagedBytes]
	assert.False(t, recorded, "Bytes 为 0 时不记录字节直方图")
}

func TestOTelObserverParentFromXctx(t *testing.T) {
	obs, exporter, _ := newTestObserver(t)

	ctx, _ := xctx.WithTraceID(context.Background(), "4bf92f3577b34da6a3ce929d0e0e4736")
	ctx, _ = xctx.WithSpanID(ctx, "00f067aa0ba902b7")
	ctx, _ = xctx.WithTraceFlags(ctx, "01")

	_, span := obs.Start(ctx, SpanOptions{Component: "xsweep", Operation: "sweep"})
	span.End(Result{})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext.TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", spans[0].Parent.SpanID().String())
}

func TestNewOTelObserverNilOption(t *testing.T) {
	_, err := NewOTelObserver(nil)
	assert.ErrorIs(t, err, ErrNilOption)
}

// ============================================================================
// Start / Noop 测试
// ============================================================================

type nilObserver struct{}

func (nilObserver) Start(context.Context, SpanOptions) (context.Context, Span) { return nil, nil }

//nolint:staticcheck // 有意传入 nil context
func TestStart(t *testing.T) {
	ctx, span := Start(nil, nil, SpanOptions{})
	assert.NotNil(t, ctx)
	assert.IsType(t, NoopSpan{}, span)

	ctx, span = Start(context.Background(), nilObserver{}, SpanOptions{})
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
	span.End(Result{})

	ctx, span = NoopObserver{}.Start(nil, SpanOptions{})
	assert.NotNil(t, ctx)
	span.End(Result{})
}

func TestResolveStatus(t *testing.T) {
	assert.Equal(t, StatusOK, resolveStatus(Result{}))
	assert.Equal(t, StatusError, resolveStatus(Result{Err: errors.New("x")}))
	assert.Equal(t, StatusOK, resolveStatus(Result{Status: StatusOK, Err: errors.New("x")}))
}
