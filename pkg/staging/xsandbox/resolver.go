package xsandbox

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/omeyang/xstage/pkg/observability/xlog"
	"github.com/omeyang/xstage/pkg/util/xkeylock"
	"github.com/omeyang/xstage/pkg/util/xlru"
)

const (
	// DirPerm 沙箱目录权限，仅属主可访问。
	DirPerm fs.FileMode = 0o700

	// IdentityPrefix 身份目录名前缀。
	IdentityPrefix = "id-"
	// SharedDirName 关闭多租户时的共享目录名。
	SharedDirName = "shared"

	digestHexLen  = 32
	touchCacheCap = 4096
)

// Resolver 派生并创建沙箱根目录，并发安全。
type Resolver struct {
	cfg      Config
	base     string
	locks    xkeylock.Locker
	ownLocks bool
	touched  *xlru.Cache[string, time.Time]
	logger   xlog.Logger
	now      func() time.Time
}

// New 创建 Resolver。
func New(cfg Config, opts ...Option) (*Resolver, error) {
	if cfg.BaseDir == "" || !filepath.IsAbs(cfg.BaseDir) || strings.ContainsRune(cfg.BaseDir, 0) {
		return nil, fmt.Errorf("%w: base_dir must be an absolute path", ErrInvalidConfig)
	}
	if cfg.TouchInterval < 0 {
		return nil, fmt.Errorf("%w: touch_interval must be non-negative", ErrInvalidConfig)
	}
	if cfg.CredentialEnv == "" {
		cfg.CredentialEnv = DefaultCredentialEnv
	}

	r := &Resolver{
		cfg:    cfg,
		base:   filepath.Clean(cfg.BaseDir),
		logger: xlog.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.locks == nil {
		locks, err := xkeylock.New()
		if err != nil {
			return nil, err
		}
		r.locks, r.ownLocks = locks, true
	}
	if cfg.TouchInterval > 0 {
		touched, err := xlru.New[string, time.Time](xlru.Config{Size: touchCacheCap, TTL: cfg.TouchInterval}, xlru.WithClock(r.now))
		if err != nil {
			return nil, err
		}
		r.touched = touched
	}
	return r, nil
}

// Close 释放内部资源。注入的 Locker 不会被关闭。
func (r *Resolver) Close() error {
	if r.touched != nil {
		r.touched.Close()
	}
	if r.ownLocks {
		if err := r.locks.Close(); err != nil && !errors.Is(err, xkeylock.ErrClosed) {
			return err
		}
	}
	return nil
}

// BaseDir 返回清理后的父目录。
func (r *Resolver) BaseDir() string { return r.base }

// Locker 返回根目录级 key 锁，供 xsweep 共享。
func (r *Resolver) Locker() xkeylock.Locker { return r.locks }

// Resolve 由凭据派生根目录路径，不做 I/O。
// 多租户模式下凭据为空或纯空白时返回 [ErrMissingCredential]。
func (r *Resolver) Resolve(credential string) (string, error) {
	if !r.cfg.MultiTenant {
		return filepath.Join(r.base, SharedDirName), nil
	}
	if strings.TrimSpace(credential) == "" {
		return "", ErrMissingCredential
	}
	return filepath.Join(r.base, IdentityPrefix+Digest(credential)), nil
}

// ResolveFromEnv 从 Config.CredentialEnv 读取凭据后调用 Resolve。
func (r *Resolver) ResolveFromEnv() (string, error) {
	root, err := r.Resolve(os.Getenv(r.cfg.CredentialEnv))
	if errors.Is(err, ErrMissingCredential) {
		return "", fmt.Errorf("%w: %s is not set", ErrMissingCredential, r.cfg.CredentialEnv)
	}
	return root, err
}

// Ensure 幂等地创建根目录并刷新其 mtime，返回根目录路径。
//
// 已存在的根目录必须是真实目录（不跟随符号链接），权限宽于 0700 时收紧。
func (r *Resolver) Ensure(ctx context.Context, root string) (string, error) {
	if err := r.checkRoot(root); err != nil {
		return "", err
	}
	h, err := r.locks.Acquire(ctx, root)
	if err != nil {
		return "", fmt.Errorf("xsandbox: lock root: %w", err)
	}
	defer h.Unlock() //nolint:errcheck // 刚获取的 Handle 首次 Unlock 不会失败

	created, err := r.ensureLocked(root)
	if err != nil {
		return "", err
	}
	if created {
		r.logger.Info(ctx, "sandbox root created", slog.String("identity", IdentityOf(root)))
	}
	return root, nil
}

func (r *Resolver) ensureLocked(root string) (created bool, err error) {
	if err := os.MkdirAll(r.base, DirPerm); err != nil {
		return false, fmt.Errorf("xsandbox: create base dir: %w", err)
	}

	info, err := os.Lstat(root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.Mkdir(root, DirPerm); err != nil && !errors.Is(err, fs.ErrExist) {
			return false, fmt.Errorf("xsandbox: create root: %w", err)
		}
		created = true
		if info, err = os.Lstat(root); err != nil {
			return false, fmt.Errorf("xsandbox: stat root: %w", err)
		}
	case err != nil:
		return false, fmt.Errorf("xsandbox: stat root: %w", err)
	}

	if !info.IsDir() {
		return false, ErrNotDirectory
	}
	if info.Mode().Perm()&^DirPerm != 0 {
		if err := os.Chmod(root, DirPerm); err != nil {
			return false, fmt.Errorf("xsandbox: tighten root perm: %w", err)
		}
	}
	return created, r.touch(root, created)
}

// touch 刷新 mtime，TouchInterval 内重复调用跳过。
func (r *Resolver) touch(root string, force bool) error {
	if !force && r.touched != nil && r.touched.Contains(root) {
		return nil
	}
	now := r.now()
	if err := os.Chtimes(root, now, now); err != nil {
		return fmt.Errorf("xsandbox: touch root: %w", err)
	}
	if r.touched != nil {
		r.touched.Set(root, now)
	}
	return nil
}

// checkRoot 确认 root 是 BaseDir 的直接子目录且名字符合沙箱命名。
func (r *Resolver) checkRoot(root string) error {
	if filepath.Clean(root) != root || filepath.Dir(root) != r.base || !IsSandboxName(filepath.Base(root)) {
		return ErrInvalidRoot
	}
	return nil
}

// Digest 返回凭据 SHA-256 摘要的前 32 个十六进制字符。
func Digest(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])[:digestHexLen]
}

// IsSandboxName 报告目录名是否为沙箱根目录命名。
func IsSandboxName(name string) bool {
	if name == SharedDirName {
		return true
	}
	hexPart, ok := strings.CutPrefix(name, IdentityPrefix)
	if !ok || len(hexPart) != digestHexLen {
		return false
	}
	_, err := hex.DecodeString(hexPart)
	return err == nil
}

// IdentityOf 返回根目录对应的日志身份标识：摘要前 12 位，或 "shared"。
func IdentityOf(root string) string {
	name := filepath.Base(root)
	if hexPart, ok := strings.CutPrefix(name, IdentityPrefix); ok && len(hexPart) >= 12 {
		return hexPart[:12]
	}
	return name
}
