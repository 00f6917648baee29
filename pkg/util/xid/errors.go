package xid

import "errors"

var (
	// ErrNilGenerator 生成器为 nil 或未通过 NewGenerator 创建。
	ErrNilGenerator = errors.New("xid: nil generator (use NewGenerator to create)")

	// ErrNilContext context 参数为 nil。
	ErrNilContext = errors.New("xid: nil context")

	// ErrInvalidConfig 配置无效，或 sonyflake 初始化失败。
	ErrInvalidConfig = errors.New("xid: invalid config")

	// ErrOverTimeLimit 时间分量溢出，不可恢复。
	ErrOverTimeLimit = errors.New("xid: time component overflow")

	// ErrClockBackwardTimeout 等待时钟恢复超时。
	ErrClockBackwardTimeout = errors.New("xid: clock backward wait timeout")

	// ErrInvalidID 解析出的 ID 非法。
	ErrInvalidID = errors.New("xid: invalid id")

	// ErrInvalidMachineID 环境变量中的机器 ID 无法解析或越界。
	ErrInvalidMachineID = errors.New("xid: invalid machine id")
)
