// Package xlog 基于 log/slog 的结构化日志库。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、轮转）
//   - 自动从 context 注入 stage_id、identity、trace_id（EnrichHandler，默认启用）
//   - 凭据字段脱敏（[Redact]）
//   - 动态级别调整（运行时热更新）
//   - 全局 Logger（[Default]）
//
// # 创建 Logger
//
// 使用 Builder 模式（first-error-wins：遇到第一个配置错误后，Build 返回该错误）。
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("info").
//		SetFormat("json").
//		SetRotation("/var/log/xstage/janitor.log").
//		SetReplaceAttr(xlog.Redact()).
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// # 凭据与密钥
//
// 暂存流水线处理的是不可信内容和访问凭据。日志中只允许出现凭据摘要前缀与
// 文件的相对路径，命中的密钥原文永远不进入日志。[Redact] 对常见的凭据类
// 字段名做兜底遮蔽，它不能替代调用方的约束。
//
// # 便捷属性
//
// [Err]、[Duration]、[Component]、[Operation]、[Count]、[Path]、[Mode]、[Size]、
// [Category]、[Kind]。
package xlog
