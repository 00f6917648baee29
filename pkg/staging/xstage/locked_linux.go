//go:build linux

package xstage

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sys/unix"

	"github.com/omeyang/xstage/pkg/util/xsys"
)

// LockedAllocator 在 Go 堆外通过 mmap 分配，mlock 防止换出，MADV_DONTDUMP 排除出 core dump。
// 总量受预算与 RLIMIT_MEMLOCK 共同约束。
type LockedAllocator struct {
	budget int64
	sem    *semaphore.Weighted
}

// NewLockedAllocator 创建锁定内存分配器。
// RLIMIT_MEMLOCK 低于 budget 时尝试提升 soft limit，仍不足则以实际限制作为预算。
func NewLockedAllocator(budget int64) (*LockedAllocator, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("%w: memory budget must be positive", ErrInvalidConfig)
	}
	effective := budget
	if soft, err := xsys.RaiseMemlockLimit(uint64(budget)); err == nil && soft < uint64(budget) {
		effective = int64(soft)
	}
	if effective <= 0 {
		return nil, fmt.Errorf("%w: RLIMIT_MEMLOCK is zero", ErrInvalidConfig)
	}
	return &LockedAllocator{budget: effective, sem: semaphore.NewWeighted(effective)}, nil
}

// Budget 返回生效的预算。
func (a *LockedAllocator) Budget() int64 { return a.budget }

// Allocate 分配 size 字节。mmap 或 mlock 的 ENOMEM/EAGAIN/EPERM 视为分配失败。
func (a *LockedAllocator) Allocate(size int) (Buffer, error) {
	if size < 0 {
		return nil, fmt.Errorf("xstage: negative size %d", size)
	}
	if size == 0 {
		return &heapBuffer{data: []byte{}}, nil
	}
	n := int64(size)
	if !a.sem.TryAcquire(n) {
		return nil, fmt.Errorf("%w: %d bytes exceed remaining budget of %d", ErrAllocationFailure, n, a.budget)
	}

	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		a.sem.Release(n)
		return nil, allocErr("mmap", err)
	}
	if err := unix.Mlock(data); err != nil {
		_ = unix.Munmap(data)
		a.sem.Release(n)
		return nil, allocErr("mlock", err)
	}
	// 旧内核可能不支持，缓冲区仍然不会被换出
	_ = unix.Madvise(data, unix.MADV_DONTDUMP)

	return &lockedBuffer{data: data, size: size, release: func() { a.sem.Release(n) }}, nil
}

func allocErr(op string, err error) error {
	if errors.Is(err, unix.ENOMEM) || errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EPERM) {
		return fmt.Errorf("%w: %s: %w", ErrAllocationFailure, op, err)
	}
	return fmt.Errorf("xstage: %s: %w", op, err)
}

type lockedBuffer struct {
	mu      sync.Mutex
	data    []byte
	size    int
	release func()
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return nil
	}
	return b.data[:b.size]
}

func (b *lockedBuffer) Free() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return
	}
	clear(b.data)
	_ = unix.Munlock(b.data)
	_ = unix.Munmap(b.data)
	b.data = nil
	b.release()
}
