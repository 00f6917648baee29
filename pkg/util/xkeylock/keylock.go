package xkeylock

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Handle 表示一次成功的锁获取。
type Handle interface {
	// Unlock 释放锁。第一次调用返回 nil，后续调用返回 [ErrLockNotHeld]。
	Unlock() error

	// Key 返回锁的 key，Unlock 之后仍可调用。
	Key() string
}

// Locker 提供基于 key 的进程内互斥锁，所有方法并发安全。
type Locker interface {
	io.Closer

	// Acquire 阻塞式获取锁，ctx 取消时返回 ctx.Err()。
	// 等待期间 Close 与 ctx 取消同时发生时，返回 [ErrClosed] 或 ctx.Err() 均有可能。
	Acquire(ctx context.Context, key string) (Handle, error)

	// TryAcquire 非阻塞获取锁，锁被占用时返回 [ErrLockOccupied]。
	TryAcquire(key string) (Handle, error)

	// Len 返回当前活跃的 key 数量（持有者与等待者），瞬时快照。
	Len() int
}

// New 创建 Locker，分片数无效时返回 [ErrInvalidShardCount]。
func New(opts ...Option) (Locker, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	shards := make([]shard, o.shardCount)
	for i := range shards {
		shards[i].entries = make(map[string]*lockEntry)
	}
	return &keyLock{
		shards:  shards,
		mask:    uint64(o.shardCount - 1),
		maxKeys: o.maxKeys,
		done:    make(chan struct{}),
	}, nil
}

type keyLock struct {
	shards   []shard
	mask     uint64
	maxKeys  int
	closed   atomic.Bool
	keyCount atomic.Int64
	done     chan struct{}
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

// lockEntry 的 ch 容量为 1：发送成功即持有锁，接收即释放。
// refcnt 统计持有者与等待者，归零时从 map 删除。
type lockEntry struct {
	ch     chan struct{}
	refcnt int32 // 受 shard.mu 保护
}

type handle struct {
	kl    *keyLock
	key   string
	entry *lockEntry
	done  atomic.Bool
}

func (kl *keyLock) shardFor(key string) *shard {
	return &kl.shards[xxhash.Sum64String(key)&kl.mask]
}

func (kl *keyLock) ref(key string) (*lockEntry, error) {
	s := kl.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if kl.closed.Load() {
		return nil, ErrClosed
	}
	e, ok := s.entries[key]
	if !ok {
		if kl.maxKeys > 0 {
			// CAS 保证跨分片并发时不突破上限
			for {
				cur := kl.keyCount.Load()
				if cur >= int64(kl.maxKeys) {
					return nil, ErrMaxKeysExceeded
				}
				if kl.keyCount.CompareAndSwap(cur, cur+1) {
					break
				}
			}
		} else {
			kl.keyCount.Add(1)
		}
		e = &lockEntry{ch: make(chan struct{}, 1)}
		s.entries[key] = e
	}
	e.refcnt++
	return e, nil
}

func (kl *keyLock) unref(key string, e *lockEntry) {
	s := kl.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e.refcnt--
	if e.refcnt == 0 {
		delete(s.entries, key)
		kl.keyCount.Add(-1)
	}
}

func (kl *keyLock) Acquire(ctx context.Context, key string) (Handle, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if key == "" {
		return nil, ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := kl.ref(key)
	if err != nil {
		return nil, err
	}
	select {
	case e.ch <- struct{}{}:
		return &handle{kl: kl, key: key, entry: e}, nil
	case <-ctx.Done():
		kl.unref(key, e)
		return nil, ctx.Err()
	case <-kl.done:
		kl.unref(key, e)
		return nil, ErrClosed
	}
}

func (kl *keyLock) TryAcquire(key string) (Handle, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	e, err := kl.ref(key)
	if err != nil {
		return nil, err
	}
	select {
	case e.ch <- struct{}{}:
		return &handle{kl: kl, key: key, entry: e}, nil
	default:
		kl.unref(key, e)
		return nil, ErrLockOccupied
	}
}

func (kl *keyLock) Len() int {
	return int(max(kl.keyCount.Load(), 0))
}

// Close 唤醒所有等待者并拒绝新的获取，已持有的 Handle 仍可 Unlock。
func (kl *keyLock) Close() error {
	if !kl.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	// 持有分片锁关闭，保证 ref 不会在 closed 置位后创建新条目
	for i := range kl.shards {
		kl.shards[i].mu.Lock()
	}
	close(kl.done)
	for i := range kl.shards {
		kl.shards[i].mu.Unlock()
	}
	return nil
}

func (h *handle) Unlock() error {
	if !h.done.CompareAndSwap(false, true) {
		return ErrLockNotHeld
	}
	<-h.entry.ch
	h.kl.unref(h.key, h.entry)
	return nil
}

func (h *handle) Key() string {
	return h.key
}

var (
	_ Locker = (*keyLock)(nil)
	_ Handle = (*handle)(nil)
)
