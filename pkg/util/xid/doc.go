// Package xid 生成暂存请求的唯一标识（stage_id）。
//
// 基于 Sonyflake v2：39 位时间（10ms 精度）+ 8 位序列 + 16 位机器 ID。
// 字符串形式为 base36 小写，适合放入日志与锁标记文件的内容中。
//
//	gen, err := xid.NewGenerator()
//	id, err := gen.NewString(ctx)
//
// 机器 ID 依次取自环境变量 XSTAGE_MACHINE_ID、主机名哈希。
package xid
