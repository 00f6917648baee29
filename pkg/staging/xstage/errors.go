package xstage

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNotFound 表示源文件不存在。
	ErrNotFound = errors.New("xstage: source file not found")

	// ErrNotRegular 表示源路径不是普通文件（目录、符号链接、设备等）。
	ErrNotRegular = errors.New("xstage: source is not a regular file")

	// ErrPayloadTooLarge 表示大小超过 MaxFileSize。
	ErrPayloadTooLarge = errors.New("xstage: payload too large")

	// ErrAllocationFailure 表示内存缓冲分配失败。Router 内部转为磁盘分支，不会返回给调用方。
	ErrAllocationFailure = errors.New("xstage: allocation failure")

	// ErrSourceChanged 表示读取期间源文件大小发生变化。
	ErrSourceChanged = errors.New("xstage: source changed while staging")

	// ErrTargetExists 表示落盘目标路径上已有文件。落盘不会覆盖它，errors.Is(err, fs.ErrExist) 成立。
	ErrTargetExists = fmt.Errorf("xstage: staging target already exists: %w", fs.ErrExist)

	// ErrInvalidConfig 表示配置无效。
	ErrInvalidConfig = errors.New("xstage: invalid config")

	// ErrLockedMemoryUnsupported 表示当前平台不支持锁定内存分配。
	ErrLockedMemoryUnsupported = errors.New("xstage: locked memory is not supported on this platform")
)
