// Package xsecret 检测文件名与正文中的凭据形态内容。
//
// 扫描顺序固定：
//  1. 文件名快速路径：.env 及其变体、私钥文件、.npmrc/.netrc/.pgpass、AWS credentials，
//     命中后直接返回，不读取正文
//  2. 二进制短路：正文包含 NUL 字节或调用方传入 [AsBinary] 时跳过正文扫描
//  3. 正文模式：按类别排列的大小写不敏感正则，第一个命中即返回
//
// 正则使用 RE2（regexp 包），匹配时间与输入长度线性相关，不存在灾难性回溯。
// 模式偏向误报：含糊的赋值形态一律视为命中。
//
// [Finding.Message] 只包含类别、通用修复建议和文件的基本名，永远不包含命中的子串：
//
//	f := scanner.Scan("config/app.yaml", body)
//	if err := f.Err(); err != nil {
//		return err // errors.Is(err, xsecret.ErrSecretDetected)
//	}
//
// 磁盘模式下使用 [Scanner.ScanReader] 以 64 KiB 窗口流式扫描，相邻窗口重叠 1 KiB，
// 跨窗口边界的密钥仍能被发现。流式扫描遇到第一个 NUL 字节即停止，
// 因此 NUL 之前已命中的密钥会被报告，这一点比内存模式更保守。
package xsecret
