// Package xpath 将不可信的候选相对路径解析为沙箱根目录内的绝对路径。
//
// [Sanitize] 是纯字符串计算，不做任何 I/O：
//
//	rp, err := xpath.Sanitize(`reports\2024/q1.csv`, "/srv/xstage/id-3f2a...")
//	// rp.Path() == "/srv/xstage/id-3f2a.../reports/2024/q1.csv"
//	// rp.Rel()  == "reports/2024/q1.csv"
//
// 拒绝规则：
//   - 空串、纯空白、包含 NUL、超过 [MaxPathLen] → [ErrInvalidPath]
//   - 绝对路径（POSIX "/..."、Windows "C:\..."、"C:foo"、"\..."、UNC "\\server\..."），
//     无论宿主系统 → [ErrInvalidPath]
//   - 以分隔符结尾或没有文件名 → [ErrInvalidPath]
//   - 分隔符归一化后存在 ".." 段，或拼接结果不在根目录内 → [ErrTraversalAttempt]
//
// "\" 与 "/" 都视为分隔符。Linux 上 "\" 虽是合法文件名字符，但几乎总是跨平台拼接的产物。
//
// 需要防御根目录内已有符号链接时使用 [SanitizeWithOptions] 并开启 ResolveSymlinks，
// 此时会读取文件系统。校验与随后打开文件之间仍存在 TOCTOU 窗口，
// xstage 通过 os.Root 读取来收窄该窗口。
package xpath
