package xstage

import (
	"fmt"

	"github.com/omeyang/xstage/pkg/observability/xlog"
)

// 默认值。
const (
	DefaultMemoryThreshold int64 = 5 << 20
	DefaultMaxFileSize     int64 = 100 << 20
	DefaultMemoryBudget    int64 = 64 << 20
)

// Config 路由配置，单位均为字节。
type Config struct {
	// MemoryThreshold 小于该值的文件尝试内存暂存。
	MemoryThreshold int64 `koanf:"memory_threshold"`
	// MaxFileSize 超过该值直接拒绝。
	MaxFileSize int64 `koanf:"max_file_size"`
	// MemoryBudget 进程内同时持有的内存缓冲总量上限。
	MemoryBudget int64 `koanf:"memory_budget"`
	// LockedMemory 使用 mlock 锁定的缓冲区（仅 linux）。
	LockedMemory bool `koanf:"locked_memory"`
}

// DefaultConfig 返回默认配置：阈值 5 MiB，上限 100 MiB，预算 64 MiB。
func DefaultConfig() Config {
	return Config{
		MemoryThreshold: DefaultMemoryThreshold,
		MaxFileSize:     DefaultMaxFileSize,
		MemoryBudget:    DefaultMemoryBudget,
	}
}

// Validate 校验配置。
func (c Config) Validate() error {
	switch {
	case c.MemoryThreshold <= 0:
		return fmt.Errorf("%w: memory_threshold must be positive", ErrInvalidConfig)
	case c.MaxFileSize <= 0:
		return fmt.Errorf("%w: max_file_size must be positive", ErrInvalidConfig)
	case c.MemoryBudget <= 0:
		return fmt.Errorf("%w: memory_budget must be positive", ErrInvalidConfig)
	}
	return nil
}

// Option 配置 Router。
type Option func(*Router)

// WithAllocator 替换默认分配器。
func WithAllocator(a Allocator) Option {
	return func(r *Router) {
		if a != nil {
			r.alloc = a
		}
	}
}

// WithLogger 设置日志记录器。
func WithLogger(l xlog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}
