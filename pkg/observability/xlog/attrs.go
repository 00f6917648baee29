package xlog

import (
	"log/slog"
	"time"
)

// 常用属性 Key 常量
const (
	KeyError     = "error"
	KeyDuration  = "duration"
	KeyCount     = "count"
	KeyComponent = "component"
	KeyOperation = "operation"

	// KeyPath 沙箱内的相对路径，不记录绝对路径以免暴露凭据摘要目录
	KeyPath = "path"

	// KeyMode 暂存模式（memory/disk）
	KeyMode = "mode"

	// KeySize 字节数
	KeySize = "size"

	// KeyCategory 密钥类别（从不记录命中的原文）
	KeyCategory = "category"

	// KeyKind 错误分类
	KeyKind = "kind"
)

// Err 创建错误属性，err 为 nil 时返回会被 slog 忽略的空属性。
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建耗时属性（人类可读格式，如 "1.5s"）
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Component 创建组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Operation 创建操作名属性
func Operation(name string) slog.Attr {
	return slog.String(KeyOperation, name)
}

// Count 创建计数属性
func Count(n int64) slog.Attr {
	return slog.Int64(KeyCount, n)
}

// Path 创建相对路径属性
func Path(rel string) slog.Attr {
	return slog.String(KeyPath, rel)
}

// Mode 创建暂存模式属性
func Mode(m string) slog.Attr {
	return slog.String(KeyMode, m)
}

// Size 创建字节数属性
func Size(n int64) slog.Attr {
	return slog.Int64(KeySize, n)
}

// Category 创建密钥类别属性
func Category(c string) slog.Attr {
	return slog.String(KeyCategory, c)
}

// Kind 创建错误分类属性
func Kind(k string) slog.Attr {
	return slog.String(KeyKind, k)
}
