package xctx

import (
	"context"
	"log/slog"
)

// AppendStageAttrs 将 context 中的暂存信息追加到现有切片。
func AppendStageAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	if v := StageID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyStageID, v))
	}
	if v := Identity(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyIdentity, v))
	}
	return attrs
}

// AppendTraceAttrs 将 context 中的追踪信息追加到现有切片。
func AppendTraceAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	if v := TraceID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyTraceID, v))
	}
	if v := SpanID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeySpanID, v))
	}
	if v := TraceFlags(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyTraceFlags, v))
	}
	return attrs
}

// LogAttrs 从 context 提取所有上下文信息，只返回非空字段；全部为空时返回 nil。
func LogAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs := make([]slog.Attr, 0, stageFieldCount+traceFieldCount)
	attrs = AppendStageAttrs(attrs, ctx)
	attrs = AppendTraceAttrs(attrs, ctx)
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
