// Package xcontent 校验文件扩展名白名单，并用内容嗅探交叉检查声明的类型。
//
// 嗅探基于 github.com/gabriel-vasile/mimetype，只读取开头的少量字节（默认 3 KiB），
// 并沿 MIME 父链判断从属关系（docx 属于 zip，json 属于 text/plain）。
//
// 交叉检查规则：
//   - 扩展名对应有可靠签名的类型（图片、PDF、压缩包、Office、音视频）时，
//     嗅探结果必须是该类型，或与之处于同一条父链上
//   - 扩展名属于纯文本族时，缺少签名永远不算错误；只有内容带有可靠的二进制签名
//     （如 PNG 伪装成 .txt）才算不一致
//   - 白名单中不在内置表里的扩展名只做白名单检查
//
// 不一致时的策略可配置：[PolicyReject]（默认）返回 [ErrContentMismatch]，
// [PolicyWarn] 返回 Result.Mismatch=true 且 error 为 nil，由调用方记录告警。
// 配置可通过 [Validator.Update] 原子替换，热更新不需要重建流水线。
package xcontent
