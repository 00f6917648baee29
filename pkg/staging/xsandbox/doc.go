// Package xsandbox 为每个身份派生隔离的暂存根目录，并管理目录内的锁标记。
//
// 目录名为 "id-" + hex(SHA-256(凭据)) 的前 32 个字符，凭据原文不会出现在
// 路径、日志或错误信息中。关闭多租户隔离（MultiTenant=false）时所有调用共享
// BaseDir/shared，这是显式的退出选项而非默认值。
//
//	r, err := xsandbox.New(xsandbox.DefaultConfig("/srv/xstage"))
//	root, err := r.Resolve(credential)
//	root, err = r.Ensure(ctx, root)          // 幂等：0700 创建、收紧权限、刷新 mtime
//	marker, err := r.AcquireMarker(ctx, root, stageID)
//	defer marker.Release()
//
// # 与清扫的协作
//
// Ensure 与 AcquireMarker 在进程内按根目录路径持有 [xkeylock] 锁；xsweep 使用同一个
// Locker（[Resolver.Locker]）在删除前 TryAcquire，锁被占用的目录直接跳过。
// 跨进程的活跃性由锁标记文件与目录 mtime 表达：未超时的标记或保留期内的 mtime 都会阻止删除。
package xsandbox
