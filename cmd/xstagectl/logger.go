package main

import (
	"github.com/omeyang/xstage/pkg/observability/xlog"
	"github.com/omeyang/xstage/pkg/observability/xrotate"
	"github.com/omeyang/xstage/pkg/staging/xpipeline"
)

// newLogger 按配置构建日志器；File 非空时写入轮转文件。
func newLogger(cfg xpipeline.LogConfig) (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.New().
		SetLevelString(cfg.Level).
		SetFormat(cfg.Format).
		SetReplaceAttr(xlog.Redact())
	if cfg.File != "" {
		b = b.SetRotation(cfg.File,
			xrotate.WithMaxSize(cfg.MaxSizeMB),
			xrotate.WithMaxBackups(cfg.MaxBackups),
			xrotate.WithMaxAge(cfg.MaxAgeDays),
			xrotate.WithCompress(cfg.Compress),
		)
	}
	return b.Build()
}
