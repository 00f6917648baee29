package xpipeline

import (
	"github.com/omeyang/xstage/pkg/observability/xlog"
	"github.com/omeyang/xstage/pkg/observability/xmetrics"
	"github.com/omeyang/xstage/pkg/staging/xsecret"
	"github.com/omeyang/xstage/pkg/staging/xstage"
	"github.com/omeyang/xstage/pkg/util/xid"
	"github.com/omeyang/xstage/pkg/util/xkeylock"
)

type options struct {
	logger    xlog.Logger
	observer  xmetrics.Observer
	locker    xkeylock.Locker
	allocator xstage.Allocator
	ids       *xid.Generator
	patterns  []xsecret.Option
}

// Option 配置 Pipeline。
type Option func(*options)

// WithLogger 设置日志记录器，所有子组件共享。
func WithLogger(l xlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver 设置可观测性 Observer。
func WithObserver(obs xmetrics.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithLocker 注入根目录 key 锁，由调用方关闭。
func WithLocker(l xkeylock.Locker) Option {
	return func(o *options) {
		if l != nil {
			o.locker = l
		}
	}
}

// WithAllocator 替换内存暂存的分配器。
func WithAllocator(a xstage.Allocator) Option {
	return func(o *options) {
		if a != nil {
			o.allocator = a
		}
	}
}

// WithIDGenerator 替换暂存 ID 生成器。
func WithIDGenerator(g *xid.Generator) Option {
	return func(o *options) {
		if g != nil {
			o.ids = g
		}
	}
}

// WithSecretPatterns 追加自定义密钥模式。
func WithSecretPatterns(opts ...xsecret.Option) Option {
	return func(o *options) {
		o.patterns = append(o.patterns, opts...)
	}
}
