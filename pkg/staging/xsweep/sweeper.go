package xsweep

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/omeyang/xstage/pkg/observability/xlog"
	"github.com/omeyang/xstage/pkg/observability/xmetrics"
	"github.com/omeyang/xstage/pkg/staging/xsandbox"
	"github.com/omeyang/xstage/pkg/util/xkeylock"
)

// Report 一次清扫的结果。
type Report struct {
	RootsRemoved int
	LocksRemoved int
	// Failures 删除或读取失败的条目数。
	Failures int
	// Skipped 因进程内锁被占用而跳过的根目录数。
	Skipped  int
	Duration time.Duration
}

// Sweeper 清扫器，并发安全。
type Sweeper struct {
	base     string
	policy   atomic.Pointer[Policy]
	locks    xkeylock.Locker
	ownLocks bool
	logger   xlog.Logger
	observer xmetrics.Observer
	now      func() time.Time

	removeFile func(string) error
	removeAll  func(string) error
}

// New 创建 Sweeper。Schedule 只在 [Service] 中使用，这里不要求合法。
func New(cfg Config, opts ...Option) (*Sweeper, error) {
	if cfg.BaseDir == "" || !filepath.IsAbs(cfg.BaseDir) {
		return nil, fmt.Errorf("%w: base_dir must be an absolute path", ErrInvalidConfig)
	}
	if err := cfg.Policy.Validate(); err != nil {
		return nil, err
	}

	s := &Sweeper{
		base:       filepath.Clean(cfg.BaseDir),
		logger:     xlog.Discard(),
		observer:   xmetrics.NoopObserver{},
		now:        time.Now,
		removeFile: os.Remove,
		removeAll:  os.RemoveAll,
	}
	p := cfg.Policy
	s.policy.Store(&p)
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.locks == nil {
		l, err := xkeylock.New()
		if err != nil {
			return nil, err
		}
		s.locks, s.ownLocks = l, true
	}
	return s, nil
}

// Close 关闭 Sweeper 自建的 key 锁。
func (s *Sweeper) Close() error {
	if s.ownLocks {
		return s.locks.Close()
	}
	return nil
}

// Policy 返回当前策略。
func (s *Sweeper) Policy() Policy { return *s.policy.Load() }

// SetPolicy 原子替换策略，下一个根目录起生效。
func (s *Sweeper) SetPolicy(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.policy.Store(&p)
	return nil
}

// Sweep 执行一轮清扫。BaseDir 不存在时返回空报告。
// ctx 取消时在两个根目录之间停止，返回已完成部分的报告与 ctx 错误。
func (s *Sweeper) Sweep(ctx context.Context) (report Report, err error) {
	start := s.now()
	ctx, span := xmetrics.Start(ctx, s.observer, xmetrics.SpanOptions{
		Component: "xsweep",
		Operation: "sweep",
	})
	defer func() {
		report.Duration = s.now().Sub(start)
		span.End(xmetrics.Result{Err: err, Outcome: "sweep"})
		s.logger.Info(ctx, "sweep finished",
			slog.Int("roots_removed", report.RootsRemoved),
			slog.Int("locks_removed", report.LocksRemoved),
			slog.Int("failures", report.Failures),
			slog.Int("skipped", report.Skipped),
			xlog.Duration(report.Duration),
		)
	}()

	entries, err := os.ReadDir(s.base)
	if errors.Is(err, fs.ErrNotExist) {
		return report, nil
	}
	if err != nil {
		return report, fmt.Errorf("xsweep: read base dir: %w", err)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		// DirEntry.Type 来自 lstat 语义，指向目录的符号链接不算目录
		if !e.IsDir() || !xsandbox.IsSandboxName(e.Name()) {
			continue
		}
		s.sweepRoot(ctx, filepath.Join(s.base, e.Name()), &report)
	}
	return report, nil
}

func (s *Sweeper) sweepRoot(ctx context.Context, root string, report *Report) {
	identity := slog.String("identity", xsandbox.IdentityOf(root))

	h, err := s.locks.TryAcquire(root)
	if errors.Is(err, xkeylock.ErrLockOccupied) {
		report.Skipped++
		s.logger.Debug(ctx, "sandbox root busy, skipped", identity)
		return
	}
	if err != nil {
		report.Failures++
		s.logger.Warn(ctx, "lock sandbox root failed", identity, xlog.Err(err))
		return
	}
	defer h.Unlock() //nolint:errcheck // 刚获取的 Handle 首次 Unlock 不会失败

	policy := s.Policy()
	now := s.now()

	info, err := os.Lstat(root)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			report.Failures++
			s.logger.Warn(ctx, "stat sandbox root failed", identity, xlog.Err(err))
		}
		return
	}
	newest := info.ModTime()

	entries, err := os.ReadDir(root)
	if err != nil {
		report.Failures++
		s.logger.Warn(ctx, "read sandbox root failed", identity, xlog.Err(err))
		return
	}

	active := false
	for _, e := range entries {
		ei, err := e.Info()
		if err != nil {
			continue
		}
		if xsandbox.IsMarkerName(e.Name()) && ei.Mode().IsRegular() {
			if now.Sub(ei.ModTime()) <= policy.LockTimeout {
				active = true
				continue
			}
			if err := s.removeFile(filepath.Join(root, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
				report.Failures++
				s.logger.Warn(ctx, "remove stale lock marker failed", identity, xlog.Err(err))
				active = true
				continue
			}
			report.LocksRemoved++
			s.logger.Info(ctx, "stale lock marker removed", identity)
			continue
		}
		if ei.ModTime().After(newest) {
			newest = ei.ModTime()
		}
	}

	if active || now.Sub(newest) <= policy.Retention {
		return
	}
	if err := s.removeAll(root); err != nil {
		report.Failures++
		s.logger.Warn(ctx, "remove sandbox root failed", identity, xlog.Err(err))
		return
	}
	report.RootsRemoved++
	s.logger.Info(ctx, "expired sandbox root removed", identity,
		xlog.Duration(now.Sub(newest)))
}
