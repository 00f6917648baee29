package xstage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/omeyang/xstage/pkg/observability/xlog"
	"github.com/omeyang/xstage/pkg/staging/xpath"
)

// FilePerm 落盘文件的权限。
const FilePerm fs.FileMode = 0o600

// Router 按大小与分配结果决定暂存模式，并发安全。
type Router struct {
	cfg    Config
	alloc  Allocator
	logger xlog.Logger
}

// New 创建 Router。未注入分配器时按 Config.LockedMemory 选择 LockedAllocator 或 HeapAllocator。
func New(cfg Config, opts ...Option) (*Router, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Router{cfg: cfg, logger: xlog.Discard()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.alloc == nil {
		var err error
		if cfg.LockedMemory {
			r.alloc, err = NewLockedAllocator(cfg.MemoryBudget)
		} else {
			r.alloc, err = NewHeapAllocator(cfg.MemoryBudget)
		}
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Config 返回生效配置。
func (r *Router) Config() Config { return r.cfg }

// Stat 只通过元数据取得大小。source 非 nil 时表示调用方传入的字节（可以为空切片），
// nil 表示沙箱内已存在的文件。
func (r *Router) Stat(resolved xpath.ResolvedPath, source []byte) (int64, error) {
	if resolved.IsZero() {
		return 0, fmt.Errorf("xstage: zero resolved path")
	}
	var size int64
	if source != nil {
		size = int64(len(source))
	} else {
		info, err := lstatInRoot(resolved)
		if err != nil {
			return 0, err
		}
		size = info.Size()
	}
	if size > r.cfg.MaxFileSize {
		return 0, fmt.Errorf("%w: %q is %d bytes, limit %d", ErrPayloadTooLarge, path.Base(resolved.Rel()), size, r.cfg.MaxFileSize)
	}
	return size, nil
}

// Stage 暂存 resolved。source 非 nil 时调用方必须已完成正文扫描与内容校验，
// 因为磁盘分支会把 source 落盘；沙箱内已有的文件由调用方在暂存后按路径检查。
func (r *Router) Stage(ctx context.Context, resolved xpath.ResolvedPath, source []byte) (StagedFile, error) {
	size, err := r.Stat(resolved, source)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if size < r.cfg.MemoryThreshold {
		f, err := r.memoryAttempt(resolved, source, size)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, ErrAllocationFailure) {
			return nil, err
		}
		r.logger.Warn(ctx, "memory staging failed, falling back to disk",
			xlog.Path(resolved.Rel()), xlog.Size(size), xlog.Err(err))
	}
	return r.diskFallback(resolved, source, size)
}

func (r *Router) memoryAttempt(resolved xpath.ResolvedPath, source []byte, size int64) (*MemoryFile, error) {
	buf, err := r.alloc.Allocate(int(size))
	if err != nil {
		return nil, err
	}
	if source != nil {
		copy(buf.Bytes(), source)
	} else if err := readInto(resolved, buf.Bytes()); err != nil {
		buf.Free()
		return nil, err
	}
	return &MemoryFile{path: resolved.Path(), rel: resolved.Rel(), size: size, buf: buf}, nil
}

func (r *Router) diskFallback(resolved xpath.ResolvedPath, source []byte, size int64) (*DiskFile, error) {
	f := &DiskFile{root: resolved.Root(), rel: resolved.Rel(), size: size}
	if source == nil {
		return f, nil
	}
	if err := spill(resolved, source); err != nil {
		return nil, err
	}
	f.spilled = true
	return f, nil
}

func lstatInRoot(resolved xpath.ResolvedPath) (fs.FileInfo, error) {
	root, err := os.OpenRoot(resolved.Root())
	if err != nil {
		return nil, notFoundOr(err, resolved)
	}
	defer root.Close()

	info, err := root.Lstat(filepath.FromSlash(resolved.Rel()))
	if err != nil {
		return nil, notFoundOr(err, resolved)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %q", ErrNotRegular, path.Base(resolved.Rel()))
	}
	return info, nil
}

func notFoundOr(err error, resolved xpath.ResolvedPath) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %q", ErrNotFound, resolved.Rel())
	}
	return fmt.Errorf("xstage: stat %q: %w", resolved.Rel(), err)
}

// readInto 恰好读取 len(dst) 字节，文件在 Stat 之后变大或变小都返回 ErrSourceChanged。
func readInto(resolved xpath.ResolvedPath, dst []byte) error {
	root, err := os.OpenRoot(resolved.Root())
	if err != nil {
		return notFoundOr(err, resolved)
	}
	defer root.Close()

	f, err := root.Open(filepath.FromSlash(resolved.Rel()))
	if err != nil {
		return notFoundOr(err, resolved)
	}
	defer f.Close()

	if _, err := io.ReadFull(f, dst); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %q shrank", ErrSourceChanged, resolved.Rel())
		}
		return fmt.Errorf("xstage: read %q: %w", resolved.Rel(), err)
	}
	var one [1]byte
	if n, _ := f.Read(one[:]); n > 0 {
		return fmt.Errorf("%w: %q grew", ErrSourceChanged, resolved.Rel())
	}
	return nil
}

// spill 将 data 以 0600 写入沙箱内的目标路径：先写临时文件，再以硬链接发布。
// 链接在目标已存在时失败，所以不会覆盖调用方已有的文件。
func spill(resolved xpath.ResolvedPath, data []byte) error {
	root, err := os.OpenRoot(resolved.Root())
	if err != nil {
		return fmt.Errorf("xstage: open sandbox root: %w", err)
	}
	defer root.Close()

	rel := filepath.FromSlash(resolved.Rel())
	if _, err := root.Lstat(rel); err == nil {
		return fmt.Errorf("%w: %q", ErrTargetExists, resolved.Rel())
	}
	dir := filepath.Dir(rel)
	if dir != "." {
		if err := root.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("xstage: create parent of %q: %w", resolved.Rel(), err)
		}
	}

	tmp := filepath.Join(dir, ".xstage-spill-"+uuid.NewString()+".tmp")
	f, err := root.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, FilePerm)
	if err != nil {
		return fmt.Errorf("xstage: create spill file: %w", err)
	}
	defer func() { _ = root.Remove(tmp) }()

	_, werr := f.Write(data)
	if werr == nil {
		werr = f.Sync()
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("xstage: write spill file: %w", werr)
	}
	if err := root.Link(tmp, rel); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %q", ErrTargetExists, resolved.Rel())
		}
		return fmt.Errorf("xstage: publish spill file: %w", err)
	}
	return nil
}
