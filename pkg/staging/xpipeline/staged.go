package xpipeline

import (
	"errors"
	"sync"

	"github.com/omeyang/xstage/pkg/staging/xcontent"
	"github.com/omeyang/xstage/pkg/staging/xpath"
	"github.com/omeyang/xstage/pkg/staging/xsandbox"
	"github.com/omeyang/xstage/pkg/staging/xstage"
)

// Request 一次暂存请求。
type Request struct {
	// Credential 身份凭据；为空时读取 xsandbox.Config.CredentialEnv 指定的环境变量。
	Credential string
	// Candidate 相对沙箱根目录的候选路径。
	Candidate string
	// Content 调用方持有的字节（如下载结果）；nil 表示沙箱内已存在的文件。
	Content []byte
	// Binary 调用方已知内容为二进制，跳过正文密钥扫描。
	Binary bool
}

// Staged 通过全部关卡的暂存结果，由 [Pipeline.Release] 释放。
type Staged struct {
	// ID 暂存 ID，同时写入锁标记与日志的 stage_id。
	ID string
	// Identity 凭据摘要前缀或 "shared"。
	Identity string
	File     xstage.StagedFile
	Path     xpath.ResolvedPath
	Content  xcontent.Result

	marker *xsandbox.Marker
	once   sync.Once
	err    error
}

// Mode 返回暂存模式，nil 安全。
func (s *Staged) Mode() xstage.Mode {
	if s == nil || s.File == nil {
		return 0
	}
	return s.File.Mode()
}

// release 释放缓冲区与锁标记；discard 为 true 时同时删除落盘的调用方字节。
func (s *Staged) release(discard bool) error {
	s.once.Do(func() {
		var ferr error
		if discard {
			ferr = xstage.Discard(s.File)
		} else {
			xstage.Release(s.File)
		}
		s.err = errors.Join(ferr, s.marker.Release())
	})
	return s.err
}
