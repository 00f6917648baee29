package xsandbox

import (
	"time"

	"github.com/omeyang/xstage/pkg/observability/xlog"
	"github.com/omeyang/xstage/pkg/util/xkeylock"
)

// Config 沙箱配置。
type Config struct {
	// BaseDir 所有沙箱根目录的父目录，必须为绝对路径。
	BaseDir string `koanf:"base_dir"`
	// MultiTenant 是否按身份隔离，关闭时使用 BaseDir/shared。
	MultiTenant bool `koanf:"multi_tenant"`
	// CredentialEnv ResolveFromEnv 读取凭据的环境变量名。
	CredentialEnv string `koanf:"credential_env"`
	// TouchInterval 同一根目录两次刷新 mtime 的最小间隔，0 表示每次 Ensure 都刷新。
	TouchInterval time.Duration `koanf:"touch_interval"`
}

// 默认值。
const (
	DefaultCredentialEnv = "XSTAGE_API_KEY"
	DefaultTouchInterval = time.Minute
)

// DefaultConfig 返回以 baseDir 为父目录的默认配置。
func DefaultConfig(baseDir string) Config {
	return Config{
		BaseDir:       baseDir,
		MultiTenant:   true,
		CredentialEnv: DefaultCredentialEnv,
		TouchInterval: DefaultTouchInterval,
	}
}

// Option 配置 Resolver。
type Option func(*Resolver)

// WithLocker 注入进程内 key 锁，与 xsweep 共享同一实例才能互斥。
// 注入的 Locker 由调用方关闭。
func WithLocker(l xkeylock.Locker) Option {
	return func(r *Resolver) {
		if l != nil {
			r.locks = l
			r.ownLocks = false
		}
	}
}

// WithLogger 设置日志记录器。
func WithLogger(l xlog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock 替换时间源，仅用于测试。
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}
