package xlru

import (
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const maxSize = 1 << 24

// Config 缓存配置。
type Config struct {
	// Size 最大条目数，(0, 16777216]。
	Size int
	// TTL 条目过期时间，0 表示永不过期。
	TTL time.Duration
}

// Option 配置 Cache。
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock 替换时间源。
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

type entry[V any] struct {
	value   V
	expires time.Time
}

// Cache 带 TTL 的 LRU 缓存，必须通过 [New] 创建。
//
// 过期在访问时惰性判定，不启动后台 goroutine。
// Close 后读操作返回零值，写操作静默忽略。
type Cache[K comparable, V any] struct {
	lru    *lru.Cache[K, entry[V]]
	ttl    time.Duration
	now    func() time.Time
	closed atomic.Bool
}

// New 创建缓存。
func New[K comparable, V any](cfg Config, opts ...Option) (*Cache[K, V], error) {
	switch {
	case cfg.Size <= 0:
		return nil, ErrInvalidSize
	case cfg.Size > maxSize:
		return nil, ErrSizeExceedsMax
	case cfg.TTL < 0:
		return nil, ErrInvalidTTL
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	inner, err := lru.New[K, entry[V]](cfg.Size)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{lru: inner, ttl: cfg.TTL, now: o.now}, nil
}

func (c *Cache[K, V]) expired(e entry[V]) bool {
	return !e.expires.IsZero() && !c.now().Before(e.expires)
}

// Get 返回未过期的值并更新访问顺序，已过期的条目顺带删除。
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	if c.closed.Load() {
		return value, false
	}
	e, ok := c.lru.Get(key)
	if !ok {
		return value, false
	}
	if c.expired(e) {
		c.lru.Remove(key)
		return value, false
	}
	return e.value, true
}

// Set 写入并刷新 TTL，返回是否触发了淘汰。
func (c *Cache[K, V]) Set(key K, value V) bool {
	if c.closed.Load() {
		return false
	}
	e := entry[V]{value: value}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	return c.lru.Add(key, e)
}

// Delete 删除条目，返回键是否存在。
func (c *Cache[K, V]) Delete(key K) bool {
	if c.closed.Load() {
		return false
	}
	return c.lru.Remove(key)
}

// Contains 检查键是否存在且未过期，不更新访问顺序。
func (c *Cache[K, V]) Contains(key K) bool {
	if c.closed.Load() {
		return false
	}
	e, ok := c.lru.Peek(key)
	return ok && !c.expired(e)
}

// Len 返回条目数，可能包含尚未被访问到的过期条目。
func (c *Cache[K, V]) Len() int {
	if c.closed.Load() {
		return 0
	}
	return c.lru.Len()
}

// Close 清空缓存，幂等。
func (c *Cache[K, V]) Close() {
	if c.closed.CompareAndSwap(false, true) {
		c.lru.Purge()
	}
}
