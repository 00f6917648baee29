// Package xctx 提供暂存流水线的请求上下文管理。
//
// 整合暂存操作信息（stage）与追踪信息（trace）的 context 存取能力，
// 并为日志系统提供属性提取功能。
//
// # 核心功能
//
// 暂存信息（Stage）- 标识一次暂存操作：
//   - stage_id : 暂存操作 ID（由 xid 生成）
//   - identity : 身份摘要前缀（凭据 SHA-256 的前 12 个十六进制字符）
//
// 追踪信息（Trace）- 分布式追踪：
//   - trace_id    : 追踪标识（W3C 规范，128-bit）
//   - span_id     : 跨度标识（W3C 规范，64-bit）
//   - trace_flags : 追踪标志（可选）
//
// # 命名约定
//
//	WithXxx(ctx, value)    - 注入：将 value 写入 context
//	Xxx(ctx)               - 读取：从 context 读取值，缺失时返回零值
//	RequireXxx(ctx)        - 强制读取：值必须存在，缺失时返回错误
//	EnsureXxx(ctx)         - 确保存在：若已存在则返回，否则自动生成
//
// # 凭据安全
//
// identity 字段只接受摘要。WithIdentity 会拒绝长度超过 [MaxIdentityLen] 的值，
// 防止调用方误把原始凭据写入 context 并最终进入日志。
//
// # 哨兵错误
//
//	ErrNilContext       - context 为 nil
//	ErrMissingStageID   - stage_id 缺失
//	ErrMissingIdentity  - identity 缺失
//	ErrIdentityTooLong  - identity 超过摘要前缀长度
//	ErrMissingTraceID   - trace_id 缺失
package xctx
