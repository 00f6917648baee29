package xlog

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrUnknownLevel 表示配置中的 log.level 不是可识别的级别名。
var ErrUnknownLevel = errors.New("xlog: unknown level")

// Level 日志级别，数值与 slog.Level 相同，可以直接传给 slog.LevelVar。
type Level slog.Level

const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// levelNames 是配置文件 log.level 的取值，String 输出与之相同，
// 热加载前后打印的级别可以直接回填到配置里。
var levelNames = []struct {
	name  string
	level Level
}{
	{"debug", LevelDebug},
	{"info", LevelInfo},
	{"warn", LevelWarn},
	{"error", LevelError},
}

func (l Level) String() string {
	for _, n := range levelNames {
		if n.level == l {
			return n.name
		}
	}
	return strings.ToLower(slog.Level(l).String())
}

// ParseLevel 解析 log.level。大小写与首尾空白不敏感，"warning" 等同 "warn"，
// 空串表示未配置，取 info。无法识别时返回 LevelInfo 与 ErrUnknownLevel，
// 调用方可以选择带着默认级别继续运行。
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "":
		return LevelInfo, nil
	case "warning":
		return LevelWarn, nil
	}
	for _, n := range levelNames {
		if n.name == name {
			return n.level, nil
		}
	}
	return LevelInfo, fmt.Errorf("%w %q, want one of debug/info/warn/error", ErrUnknownLevel, s)
}
