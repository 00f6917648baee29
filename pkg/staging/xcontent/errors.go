package xcontent

import "errors"

var (
	// ErrUnsupportedExtension 表示扩展名不在白名单内（包括没有扩展名）。
	ErrUnsupportedExtension = errors.New("xcontent: unsupported extension")

	// ErrContentMismatch 表示嗅探到的内容类型与扩展名不一致。
	ErrContentMismatch = errors.New("xcontent: content does not match extension")

	// ErrInvalidConfig 表示配置无效。
	ErrInvalidConfig = errors.New("xcontent: invalid config")
)
