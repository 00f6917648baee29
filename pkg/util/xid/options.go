package xid

import "time"

// Option 配置 Generator。
type Option func(*options)

type options struct {
	machineID       func() (uint16, error)
	maxWaitDuration time.Duration
	maxWaitSet      bool
}

// WithMachineID 自定义机器 ID 来源。
func WithMachineID(fn func() (uint16, error)) Option {
	return func(o *options) {
		o.machineID = fn
	}
}

// WithMaxWaitDuration 设置生成失败时的最长等待时间，0 表示不重试。
func WithMaxWaitDuration(d time.Duration) Option {
	return func(o *options) {
		o.maxWaitDuration = d
		o.maxWaitSet = true
	}
}
