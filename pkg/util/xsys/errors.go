package xsys

import "errors"

var (
	// ErrInvalidLimit 表示限制值为 0。
	ErrInvalidLimit = errors.New("xsys: limit must be greater than 0")

	// ErrUnsupportedPlatform 表示当前平台不支持此操作。
	ErrUnsupportedPlatform = errors.New("xsys: unsupported platform")
)
