//go:build !linux

package xstage

// LockedAllocator 在非 linux 平台上不可用。
type LockedAllocator struct{}

// NewLockedAllocator 在非 linux 平台上返回 [ErrLockedMemoryUnsupported]。
func NewLockedAllocator(budget int64) (*LockedAllocator, error) {
	return nil, ErrLockedMemoryUnsupported
}

// Budget 恒为 0。
func (a *LockedAllocator) Budget() int64 { return 0 }

// Allocate 恒返回 [ErrLockedMemoryUnsupported]。
func (a *LockedAllocator) Allocate(int) (Buffer, error) {
	return nil, ErrLockedMemoryUnsupported
}
