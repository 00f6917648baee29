// Package xmetrics 提供暂存流水线的可观测性接口（metrics + tracing）。
//
// 业务代码只依赖 Observer/Span 接口；默认实现基于 OpenTelemetry。
// 未注入 Observer 时使用 [NoopObserver]。
//
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "xpipeline",
//		Operation: "stage",
//	})
//	defer func() { span.End(xmetrics.Result{Err: err, Outcome: outcome, Bytes: size}) }()
//
// # 指标
//
//   - xstage.operation.total     计数，属性 component/operation/status/outcome
//   - xstage.operation.duration  直方图（秒）
//   - xstage.staged.bytes        直方图（字节），仅 Result.Bytes > 0 时记录
//
// outcome 取值由调用方决定（如 memory、disk、secret_detected），基数必须有界；
// 不允许把路径、凭据摘要等高基数或敏感值放入指标属性。
package xmetrics
