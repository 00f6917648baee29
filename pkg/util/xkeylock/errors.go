package xkeylock

import "errors"

var (
	// ErrLockNotHeld 表示 Handle 已释放，Unlock 第二次及后续调用返回此错误。
	ErrLockNotHeld = errors.New("xkeylock: lock not held")

	// ErrLockOccupied 表示 TryAcquire 时锁被占用。
	ErrLockOccupied = errors.New("xkeylock: lock occupied")

	// ErrClosed 表示 Locker 已关闭。
	ErrClosed = errors.New("xkeylock: closed")

	// ErrInvalidKey 表示 key 为空。
	ErrInvalidKey = errors.New("xkeylock: empty key")

	// ErrNilContext 表示 ctx 为 nil。
	ErrNilContext = errors.New("xkeylock: nil context")

	// ErrMaxKeysExceeded 表示已达到最大 key 数量限制。
	ErrMaxKeysExceeded = errors.New("xkeylock: max keys exceeded")

	// ErrInvalidShardCount 表示分片数不是 2 的幂或越界。
	ErrInvalidShardCount = errors.New("xkeylock: invalid shard count")
)
