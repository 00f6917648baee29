// Package xsweep 清扫过期的沙箱根目录与超时的锁标记。
//
// 一次 [Sweeper.Sweep] 遍历 BaseDir 下所有符合沙箱命名的目录（id-*、shared），
// 其他条目一律不碰。对每个根目录：
//
//   - 进程内 key 锁被占用（正在 Ensure 或创建标记）时跳过
//   - 超过 LockTimeout 的锁标记被删除并计入 LocksRemoved
//   - 仍有未超时的锁标记时保留
//   - 根目录及其顶层条目的最新 mtime 早于 Retention 时整体删除
//
// 单个条目删除失败只记日志并计入 Failures，不中断本轮清扫。
//
//	sw, err := xsweep.New(xsweep.DefaultConfig("/srv/xstage"), xsweep.WithLocker(resolver.Locker()))
//	report, err := sw.Sweep(ctx)
//
// 定时运行使用 [Service]，返回的函数可直接交给 xrun：
//
//	xrun.Run(ctx, xsweep.Service(sw, cfg.Schedule))
package xsweep
