package xsweep

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/omeyang/xstage/pkg/observability/xlog"
)

// Scheduler 按 cron 表达式周期性执行清扫，同一时刻最多运行一轮。
type Scheduler struct {
	sweeper  *Sweeper
	schedule cron.Schedule
	cron     *cron.Cron
	running  atomic.Bool

	mu   sync.Mutex
	last Report
	runs int
}

// NewScheduler 创建调度器。expr 为标准 cron 表达式或 "@every 15m" 等描述符。
func NewScheduler(sweeper *Sweeper, expr string) (*Scheduler, error) {
	if sweeper == nil {
		return nil, ErrNilSweeper
	}
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: schedule %q: %w", ErrInvalidConfig, expr, err)
	}
	return &Scheduler{
		sweeper:  sweeper,
		schedule: schedule,
		cron:     cron.New(cron.WithChain(cron.Recover(cronLogger{l: sweeper.logger}))),
	}, nil
}

// Run 立即清扫一次，然后按计划执行，直到 ctx 取消。
// 返回前等待正在运行的一轮结束。每个 Scheduler 只能 Run 一次。
func (s *Scheduler) Run(ctx context.Context) error {
	s.runOnce(ctx)
	s.cron.Schedule(s.schedule, cron.FuncJob(func() { s.runOnce(ctx) }))

	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

// Last 返回最近一轮的报告与累计完成轮数。
func (s *Scheduler) Last() (Report, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.runs
}

// runOnce 上一轮仍在运行时直接跳过。
func (s *Scheduler) runOnce(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.sweeper.logger.Warn(ctx, "previous sweep still running, skipped")
		return
	}
	defer s.running.Store(false)

	report, err := s.sweeper.Sweep(ctx)
	if err != nil && ctx.Err() == nil {
		s.sweeper.logger.Error(ctx, "sweep failed", xlog.Err(err))
	}
	s.mu.Lock()
	s.last = report
	s.runs++
	s.mu.Unlock()
}

// Service 返回供 xrun 运行的清扫服务：启动时清扫一次，之后按 expr 定时清扫。
func Service(sweeper *Sweeper, expr string) func(context.Context) error {
	return func(ctx context.Context) error {
		s, err := NewScheduler(sweeper, expr)
		if err != nil {
			return err
		}
		return s.Run(ctx)
	}
}

// cronLogger 将 cron.Logger 适配到 xlog。
type cronLogger struct {
	l xlog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(context.Background(), "cron: "+msg, kvAttrs(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(context.Background(), "cron: "+msg, append(kvAttrs(keysAndValues), xlog.Err(err))...)
}

func kvAttrs(kv []any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		attrs = append(attrs, slog.Any(key, kv[i+1]))
	}
	return attrs
}
