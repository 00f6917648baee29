// Package xrun 管理常驻进程内多个服务的并发运行与协调关闭。
//
// 基于 errgroup：任一服务返回错误或收到退出信号时，其余服务的 ctx 被取消。
// xstagectl run 用它同时运行定时清扫与配置热更新：
//
//	err := xrun.RunWithOptions(ctx, []xrun.Option{xrun.WithName("xstagectl"), xrun.WithLogger(logger)},
//		sweepService,
//		watcher.Run,
//	)
//	if errors.Is(err, xrun.ErrSignal) {
//		// 正常退出
//	}
//
// 收到 SIGHUP/SIGINT/SIGTERM/SIGQUIT 时 Run 返回 *[SignalError]。
package xrun
