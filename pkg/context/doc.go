// Package context 提供上下文相关的子包。
//
// 子包列表：
//   - xctx: Context 增强，注入/提取暂存操作 ID、身份摘要与追踪信息
//
// 设计原则：
//   - 所有上下文信息通过 context.Context 传递，不使用全局变量
//   - 身份信息只以摘要形式出现在 context 中，原始凭据不进入 context
package context
