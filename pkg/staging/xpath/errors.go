package xpath

import "errors"

var (
	// ErrInvalidPath 表示候选路径格式无效（空、NUL、绝对路径、无文件名、过长）。
	ErrInvalidPath = errors.New("xpath: invalid path")

	// ErrTraversalAttempt 表示候选路径试图逃出沙箱根目录。
	ErrTraversalAttempt = errors.New("xpath: traversal attempt")

	// ErrInvalidRoot 表示沙箱根目录本身无效（空、非绝对路径、包含 NUL），属于配置错误。
	ErrInvalidRoot = errors.New("xpath: invalid sandbox root")

	// ErrSymlinkResolution 表示开启 ResolveSymlinks 时解析失败。
	ErrSymlinkResolution = errors.New("xpath: symlink resolution failed")
)
