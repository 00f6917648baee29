package xsweep

import "errors"

var (
	// ErrInvalidConfig 表示清扫配置无效。
	ErrInvalidConfig = errors.New("xsweep: invalid config")

	// ErrNilSweeper 表示 Service 收到 nil Sweeper。
	ErrNilSweeper = errors.New("xsweep: nil sweeper")
)
