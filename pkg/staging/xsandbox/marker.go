package xsandbox

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	// MarkerPerm 锁标记文件权限。
	MarkerPerm fs.FileMode = 0o600

	markerPrefix = ".xstage-"
	markerSuffix = ".lock"
)

// Marker 表示一次暂存操作在根目录内留下的锁标记文件。
// 标记存在且未超时期间，xsweep 不会删除该根目录。
type Marker struct {
	path string
	once sync.Once
	err  error
}

// AcquireMarker 在已存在的根目录内创建锁标记，owner 写入文件内容便于排查。
func (r *Resolver) AcquireMarker(ctx context.Context, root, owner string) (*Marker, error) {
	if err := r.checkRoot(root); err != nil {
		return nil, err
	}
	h, err := r.locks.Acquire(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("xsandbox: lock root: %w", err)
	}
	defer h.Unlock() //nolint:errcheck // 刚获取的 Handle 首次 Unlock 不会失败

	p := filepath.Join(root, markerPrefix+uuid.NewString()+markerSuffix)
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, MarkerPerm)
	if err != nil {
		return nil, fmt.Errorf("xsandbox: create marker: %w", err)
	}
	_, werr := f.WriteString(owner)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(p)
		return nil, fmt.Errorf("xsandbox: write marker: %w", werr)
	}
	return &Marker{path: p}, nil
}

// Path 返回标记文件路径。
func (m *Marker) Path() string {
	if m == nil {
		return ""
	}
	return m.path
}

// Release 删除标记文件。幂等，nil 安全；文件已被清扫删除不算错误。
func (m *Marker) Release() error {
	if m == nil {
		return nil
	}
	m.once.Do(func() {
		if err := os.Remove(m.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			m.err = fmt.Errorf("xsandbox: remove marker: %w", err)
		}
	})
	return m.err
}

// IsMarkerName 报告文件名是否为锁标记。
func IsMarkerName(name string) bool {
	return len(name) > len(markerPrefix)+len(markerSuffix) &&
		strings.HasPrefix(name, markerPrefix) && strings.HasSuffix(name, markerSuffix)
}
