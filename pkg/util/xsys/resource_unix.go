//go:build unix

package xsys

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// 测试中替换以覆盖错误路径，相关测试不可 t.Parallel()。
var (
	getrlimit = unix.Getrlimit
	setrlimit = unix.Setrlimit
)

var memlockMu sync.Mutex

// MemlockLimit 返回 RLIMIT_MEMLOCK 的 soft 与 hard limit（字节）。
func MemlockLimit() (soft, hard uint64, err error) {
	var rlimit unix.Rlimit
	if err := getrlimit(unix.RLIMIT_MEMLOCK, &rlimit); err != nil {
		return 0, 0, fmt.Errorf("xsys: getrlimit RLIMIT_MEMLOCK: %w", err)
	}
	return rlimit.Cur, rlimit.Max, nil
}

// RaiseMemlockLimit 将 soft limit 提升到 limit，不超过 hard limit，返回生效后的 soft limit。
// 当前 soft limit 已不小于 limit 时不做修改。不会改动 hard limit。
func RaiseMemlockLimit(limit uint64) (uint64, error) {
	if err := validateLimit(limit); err != nil {
		return 0, err
	}

	memlockMu.Lock()
	defer memlockMu.Unlock()

	var rlimit unix.Rlimit
	if err := getrlimit(unix.RLIMIT_MEMLOCK, &rlimit); err != nil {
		return 0, fmt.Errorf("xsys: getrlimit RLIMIT_MEMLOCK: %w", err)
	}
	if rlimit.Cur >= limit {
		return rlimit.Cur, nil
	}
	rlimit.Cur = min(limit, rlimit.Max)
	if err := setrlimit(unix.RLIMIT_MEMLOCK, &rlimit); err != nil {
		return 0, fmt.Errorf("xsys: setrlimit RLIMIT_MEMLOCK: %w", err)
	}
	return rlimit.Cur, nil
}
