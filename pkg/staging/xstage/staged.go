package xstage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Mode 暂存模式。
type Mode int

const (
	ModeMemory Mode = iota + 1
	ModeDisk
)

func (m Mode) String() string {
	switch m {
	case ModeMemory:
		return "memory"
	case ModeDisk:
		return "disk"
	default:
		return "unknown"
	}
}

// StagedFile 暂存结果，只有 *MemoryFile 与 *DiskFile 两种实现。
type StagedFile interface {
	// Mode 返回暂存模式。
	Mode() Mode
	// Path 返回沙箱内的绝对路径，仅用于溯源。
	Path() string
	// Rel 返回相对沙箱根目录的路径。
	Rel() string
	// Size 返回字节数。
	Size() int64

	staged()
}

// MemoryFile 独占一块内存缓冲区。
type MemoryFile struct {
	path string
	rel  string
	size int64

	mu  sync.Mutex
	buf Buffer
}

func (f *MemoryFile) Mode() Mode { return ModeMemory }
func (f *MemoryFile) Path() string { return f.path }
func (f *MemoryFile) Rel() string { return f.rel }
func (f *MemoryFile) Size() int64 { return f.size }
func (f *MemoryFile) staged() {}

// Bytes 返回缓冲区内容，Release 之后返回 nil。
// 返回的切片只在 Release 之前有效，不得保留。
func (f *MemoryFile) Bytes() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.buf == nil {
		return nil
	}
	return f.buf.Bytes()
}

// NewReader 返回缓冲区内容的 Reader，Release 之后读到空内容。
func (f *MemoryFile) NewReader() *bytes.Reader {
	return bytes.NewReader(f.Bytes())
}

// Released 报告缓冲区是否已释放。
func (f *MemoryFile) Released() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf == nil
}

func (f *MemoryFile) release() {
	f.mu.Lock()
	buf := f.buf
	f.buf = nil
	f.mu.Unlock()
	if buf != nil {
		buf.Free()
	}
}

// DiskFile 引用沙箱内的文件，不拥有它。
type DiskFile struct {
	root    string
	rel     string
	size    int64
	spilled bool
}

func (f *DiskFile) Mode() Mode { return ModeDisk }
func (f *DiskFile) Path() string { return filepath.Join(f.root, filepath.FromSlash(f.rel)) }
func (f *DiskFile) Rel() string { return f.rel }
func (f *DiskFile) Size() int64 { return f.size }
func (f *DiskFile) staged() {}

// Spilled 报告文件是否由调用方传入的字节落盘而来（而非调用方已有的文件）。
func (f *DiskFile) Spilled() bool { return f.spilled }

// Open 通过以沙箱根目录打开的 os.Root 打开文件，符号链接不能逃出根目录。
func (f *DiskFile) Open() (*os.File, error) {
	root, err := os.OpenRoot(f.root)
	if err != nil {
		return nil, err
	}
	defer root.Close()
	return root.Open(filepath.FromSlash(f.rel))
}

// Verify 确认通过 Open 得到的 h 读完之后文件仍是 Stat 时的那一个：
// 大小不变，且路径仍指向同一个 inode。否则返回 ErrSourceChanged。
func (f *DiskFile) Verify(h *os.File) error {
	opened, err := h.Stat()
	if err != nil {
		return fmt.Errorf("xstage: stat %q: %w", f.rel, err)
	}
	if opened.Size() != f.size {
		return fmt.Errorf("%w: %q is %d bytes, staged as %d", ErrSourceChanged, f.rel, opened.Size(), f.size)
	}
	root, err := os.OpenRoot(f.root)
	if err != nil {
		return fmt.Errorf("xstage: open sandbox root: %w", err)
	}
	defer root.Close()
	current, err := root.Lstat(filepath.FromSlash(f.rel))
	if err != nil || !os.SameFile(opened, current) {
		return fmt.Errorf("%w: %q was replaced", ErrSourceChanged, f.rel)
	}
	return nil
}

// Release 释放暂存结果：内存模式清零并归还缓冲区，磁盘模式不做任何事。
// 幂等，nil 安全，不会 panic。
func Release(f StagedFile) {
	if m, ok := f.(*MemoryFile); ok && m != nil {
		m.release()
	}
}

// Discard 在 Release 之外删除本次落盘新建的文件，用于暂存之后失败时的清理。
// 落盘从不覆盖已有文件，因此被删除的只会是本次写入的字节；
// 引用调用方已有文件的 DiskFile 不受影响。
func Discard(f StagedFile) error {
	Release(f)
	d, ok := f.(*DiskFile)
	if !ok || d == nil || !d.spilled {
		return nil
	}
	root, err := os.OpenRoot(d.root)
	if err != nil {
		return fmt.Errorf("xstage: open sandbox root: %w", err)
	}
	defer root.Close()
	if err := root.Remove(filepath.FromSlash(d.rel)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("xstage: remove spilled file: %w", err)
	}
	return nil
}

// Use 执行 fn 并在返回（包括 panic）时释放 f。
func Use(f StagedFile, fn func(StagedFile) error) error {
	defer Release(f)
	return fn(f)
}
