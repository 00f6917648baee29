package xstage

import (
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

//go:generate mockgen -source=allocator.go -destination=allocator_mock_test.go -package=xstage

// Buffer 分配得到的定长缓冲区。
type Buffer interface {
	// Bytes 返回缓冲区内容，Free 之后返回 nil。
	Bytes() []byte
	// Free 清零并归还缓冲区，幂等。
	Free()
}

// Allocator 内存缓冲分配器，实现必须并发安全。
// 资源不足时返回包装了 [ErrAllocationFailure] 的错误。
type Allocator interface {
	Allocate(size int) (Buffer, error)
}

// HeapAllocator 在 Go 堆上分配，总量受预算约束。
type HeapAllocator struct {
	budget int64
	sem    *semaphore.Weighted
}

// NewHeapAllocator 创建预算为 budget 字节的堆分配器。
func NewHeapAllocator(budget int64) (*HeapAllocator, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("%w: memory budget must be positive", ErrInvalidConfig)
	}
	return &HeapAllocator{budget: budget, sem: semaphore.NewWeighted(budget)}, nil
}

// Allocate 不阻塞：预算不足时立即返回 [ErrAllocationFailure]。
func (a *HeapAllocator) Allocate(size int) (Buffer, error) {
	if size < 0 {
		return nil, fmt.Errorf("xstage: negative size %d", size)
	}
	n := int64(size)
	if !a.sem.TryAcquire(n) {
		return nil, fmt.Errorf("%w: %d bytes exceed remaining budget of %d", ErrAllocationFailure, n, a.budget)
	}
	return &heapBuffer{data: make([]byte, size), release: func() { a.sem.Release(n) }}, nil
}

type heapBuffer struct {
	mu      sync.Mutex
	data    []byte
	release func()
}

func (b *heapBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}

func (b *heapBuffer) Free() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return
	}
	clear(b.data)
	b.data = nil
	if b.release != nil {
		b.release()
	}
}
