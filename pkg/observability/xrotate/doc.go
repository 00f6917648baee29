// Package xrotate 提供日志文件轮转能力，用于 xstagectl 等常驻进程的日志落盘。
//
// 基于 lumberjack 按大小轮转，备份文件按数量与天数清理。日志文件使用 lumberjack
// 默认的 0600 权限创建，父目录以 0700 创建，与暂存区的"仅属主可见"约束一致。
//
//	r, err := xrotate.NewLumberjack("/var/log/xstage/janitor.log", xrotate.WithMaxSize(100))
//	if err != nil {
//		return err
//	}
//	defer r.Close()
package xrotate
