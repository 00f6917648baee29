package xsweep

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/omeyang/xstage/pkg/observability/xlog"
	"github.com/omeyang/xstage/pkg/observability/xmetrics"
	"github.com/omeyang/xstage/pkg/util/xkeylock"
)

// 默认值。
const (
	DefaultRetention   = 24 * time.Hour
	DefaultLockTimeout = 30 * time.Minute
	DefaultSchedule    = "@every 15m"
)

// Policy 可热更新的清扫策略。
type Policy struct {
	// Retention 根目录最新 mtime 早于 now-Retention 时删除。
	Retention time.Duration `koanf:"retention"`
	// LockTimeout 锁标记 mtime 早于 now-LockTimeout 时视为残留。
	LockTimeout time.Duration `koanf:"lock_timeout"`
}

// Validate 校验策略。
func (p Policy) Validate() error {
	if p.Retention <= 0 {
		return fmt.Errorf("%w: retention must be positive", ErrInvalidConfig)
	}
	if p.LockTimeout <= 0 {
		return fmt.Errorf("%w: lock_timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Config 清扫配置。
type Config struct {
	// BaseDir 沙箱根目录的父目录，与 xsandbox.Config.BaseDir 相同。
	BaseDir string `koanf:"base_dir"`
	Policy  `koanf:",squash"`
	// Schedule cron 表达式，支持 "@every 15m" 等描述符。
	Schedule string `koanf:"schedule"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig(baseDir string) Config {
	return Config{
		BaseDir: baseDir,
		Policy: Policy{
			Retention:   DefaultRetention,
			LockTimeout: DefaultLockTimeout,
		},
		Schedule: DefaultSchedule,
	}
}

// Validate 校验配置。
func (c Config) Validate() error {
	if c.BaseDir == "" || !filepath.IsAbs(c.BaseDir) {
		return fmt.Errorf("%w: base_dir must be an absolute path", ErrInvalidConfig)
	}
	if err := c.Policy.Validate(); err != nil {
		return err
	}
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return fmt.Errorf("%w: schedule %q: %w", ErrInvalidConfig, c.Schedule, err)
	}
	return nil
}

// Option 配置 Sweeper。
type Option func(*Sweeper)

// WithLocker 注入与 xsandbox.Resolver 共享的进程内 key 锁。
func WithLocker(l xkeylock.Locker) Option {
	return func(s *Sweeper) {
		if l != nil {
			s.locks = l
			s.ownLocks = false
		}
	}
}

// WithLogger 设置日志记录器。
func WithLogger(l xlog.Logger) Option {
	return func(s *Sweeper) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver 设置可观测性 Observer。
func WithObserver(o xmetrics.Observer) Option {
	return func(s *Sweeper) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithClock 替换时间源，仅用于测试。
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}
