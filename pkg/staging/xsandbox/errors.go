package xsandbox

import "errors"

var (
	// ErrMissingCredential 表示多租户模式下没有可用凭据，属于配置错误。
	ErrMissingCredential = errors.New("xsandbox: missing credential")

	// ErrInvalidConfig 表示配置无效（如 BaseDir 为空或不是绝对路径）。
	ErrInvalidConfig = errors.New("xsandbox: invalid config")

	// ErrInvalidRoot 表示传入的根目录不是本 Resolver 派生的沙箱目录。
	ErrInvalidRoot = errors.New("xsandbox: not a sandbox root")

	// ErrNotDirectory 表示根目录路径已存在但不是真实目录（如符号链接或普通文件）。
	ErrNotDirectory = errors.New("xsandbox: sandbox root is not a directory")
)
