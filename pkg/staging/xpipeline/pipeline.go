package xpipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/omeyang/xstage/pkg/context/xctx"
	"github.com/omeyang/xstage/pkg/observability/xlog"
	"github.com/omeyang/xstage/pkg/observability/xmetrics"
	"github.com/omeyang/xstage/pkg/staging/xcontent"
	"github.com/omeyang/xstage/pkg/staging/xpath"
	"github.com/omeyang/xstage/pkg/staging/xsandbox"
	"github.com/omeyang/xstage/pkg/staging/xsecret"
	"github.com/omeyang/xstage/pkg/staging/xstage"
	"github.com/omeyang/xstage/pkg/staging/xsweep"
	"github.com/omeyang/xstage/pkg/util/xid"
)

// Pipeline 暂存流水线，并发安全。
type Pipeline struct {
	cfg       Config
	resolver  *xsandbox.Resolver
	scanner   *xsecret.Scanner
	validator *xcontent.Validator
	router    *xstage.Router
	ids       *xid.Generator
	logger    xlog.Logger
	observer  xmetrics.Observer
}

// New 按 cfg 组装全部组件。
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	cfg.Sweep.BaseDir = cfg.Sandbox.BaseDir
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &options{logger: xlog.Discard(), observer: xmetrics.NoopObserver{}}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	p := &Pipeline{cfg: cfg, logger: o.logger, observer: o.observer, ids: o.ids}
	var err error
	if p.ids == nil {
		if p.ids, err = xid.NewGenerator(); err != nil {
			return nil, fmt.Errorf("xpipeline: id generator: %w", err)
		}
	}
	if p.scanner, err = xsecret.New(o.patterns...); err != nil {
		return nil, err
	}
	if p.validator, err = xcontent.New(cfg.Content); err != nil {
		return nil, err
	}

	stageOpts := []xstage.Option{xstage.WithLogger(o.logger)}
	if o.allocator != nil {
		stageOpts = append(stageOpts, xstage.WithAllocator(o.allocator))
	}
	if p.router, err = xstage.New(cfg.Stage, stageOpts...); err != nil {
		return nil, err
	}

	sandboxOpts := []xsandbox.Option{xsandbox.WithLogger(o.logger)}
	if o.locker != nil {
		sandboxOpts = append(sandboxOpts, xsandbox.WithLocker(o.locker))
	}
	if p.resolver, err = xsandbox.New(cfg.Sandbox, sandboxOpts...); err != nil {
		return nil, err
	}
	return p, nil
}

// Close 释放 Pipeline 自建的资源。已返回的 Staged 仍需单独 Release。
func (p *Pipeline) Close() error {
	return p.resolver.Close()
}

// Config 返回构造时的配置。
func (p *Pipeline) Config() Config { return p.cfg }

// Validator 返回内容校验器，可通过 Update 热更新白名单与策略。
func (p *Pipeline) Validator() *xcontent.Validator { return p.validator }

// NewSweeper 创建与本流水线共享 key 锁、日志与 Observer 的清扫器。
func (p *Pipeline) NewSweeper(opts ...xsweep.Option) (*xsweep.Sweeper, error) {
	base := []xsweep.Option{
		xsweep.WithLocker(p.resolver.Locker()),
		xsweep.WithLogger(p.logger),
		xsweep.WithObserver(p.observer),
	}
	return xsweep.New(p.cfg.Sweep, append(base, opts...)...)
}

// Stage 依次执行全部关卡并返回暂存结果。失败时不残留任何已物化的资源。
func (p *Pipeline) Stage(ctx context.Context, req Request) (staged *Staged, err error) {
	id, err := p.ids.NewString(ctx)
	if err != nil {
		return nil, fmt.Errorf("xpipeline: stage id: %w", err)
	}
	if stageCtx, cerr := xctx.WithStageID(ctx, id); cerr == nil {
		ctx = stageCtx
	}

	ctx, span := xmetrics.Start(ctx, p.observer, xmetrics.SpanOptions{
		Component: "xpipeline",
		Operation: "stage",
	})
	defer func() {
		if err != nil {
			kind := KindOf(err)
			p.logger.Warn(ctx, "stage rejected", xlog.Kind(kind.String()), xlog.Err(err))
			span.End(xmetrics.Result{Err: err, Outcome: kind.String()})
			return
		}
		span.End(xmetrics.Result{Outcome: staged.Mode().String(), Bytes: staged.File.Size()})
	}()

	s := &Staged{ID: id}
	defer func() {
		if err != nil {
			if rerr := s.release(true); rerr != nil {
				p.logger.Warn(ctx, "release after rejection failed", xlog.Err(rerr))
			}
		}
	}()

	// 1. 身份根目录
	root, err := p.resolveRoot(req.Credential)
	if err != nil {
		return nil, err
	}
	s.Identity = xsandbox.IdentityOf(root)
	if idCtx, cerr := xctx.WithIdentity(ctx, s.Identity); cerr == nil {
		ctx = idCtx
	}

	// 2. 路径
	if s.Path, err = xpath.Sanitize(req.Candidate, root); err != nil {
		return nil, err
	}

	// 3. 根目录与锁标记
	if _, err = p.resolver.Ensure(ctx, root); err != nil {
		return nil, err
	}
	if s.marker, err = p.resolver.AcquireMarker(ctx, root, id); err != nil {
		return nil, err
	}

	// 4. 大小
	if _, err = p.router.Stat(s.Path, req.Content); err != nil {
		return nil, err
	}

	// 5. 文件名快速路径先于白名单，.env 报告为密钥而非扩展名错误
	if err = p.scanner.ScanName(s.Path.Rel()).Err(); err != nil {
		return nil, err
	}

	// 6. 白名单
	if _, err = p.validator.CheckExtension(s.Path.Rel()); err != nil {
		return nil, err
	}

	// 7、8. 调用方传入的字节在暂存前完成正文扫描与内容嗅探，未通过的内容不会落盘
	if req.Content != nil {
		if s.Content, err = p.inspectBytes(s.Path.Rel(), req.Content, req.Binary); err != nil {
			return nil, err
		}
	}

	// 9. 暂存
	if s.File, err = p.router.Stage(ctx, s.Path, req.Content); err != nil {
		return nil, err
	}

	// 沙箱内已有的文件只能在暂存后读取：内存模式检查缓冲区，磁盘模式按路径流式读取
	if req.Content == nil {
		if s.Content, err = p.inspect(s.File, req.Binary); err != nil {
			return nil, err
		}
	}
	if s.Content.Mismatch {
		p.logger.Warn(ctx, "content type mismatch accepted by policy",
			xlog.Path(s.Path.Rel()),
			slog.String("expected", s.Content.Expected),
			slog.String("detected", s.Content.Detected),
		)
	}

	p.logger.Info(ctx, "file staged",
		xlog.Path(s.Path.Rel()),
		xlog.Mode(s.File.Mode().String()),
		xlog.Size(s.File.Size()),
	)
	return s, nil
}

func (p *Pipeline) resolveRoot(credential string) (string, error) {
	if credential == "" {
		return p.resolver.ResolveFromEnv()
	}
	return p.resolver.Resolve(credential)
}

// inspectBytes 对一段内容执行正文密钥扫描与内容嗅探。
func (p *Pipeline) inspectBytes(name string, data []byte, binary bool) (xcontent.Result, error) {
	var scanOpts []xsecret.ScanOption
	if binary {
		scanOpts = append(scanOpts, xsecret.AsBinary())
	}
	if err := p.scanner.Scan(name, data, scanOpts...).Err(); err != nil {
		return xcontent.Result{}, err
	}
	return p.validator.Validate(name, data)
}

// inspect 对已物化的沙箱内文件执行正文密钥扫描与内容嗅探。
func (p *Pipeline) inspect(file xstage.StagedFile, binary bool) (xcontent.Result, error) {
	name := file.Rel()
	switch f := file.(type) {
	case *xstage.MemoryFile:
		return p.inspectBytes(name, f.Bytes(), binary)

	case *xstage.DiskFile:
		if !binary {
			finding, err := withFile(f, func(r io.Reader) (xsecret.Finding, error) {
				return p.scanner.ScanReader(name, r)
			})
			if err != nil {
				return xcontent.Result{}, err
			}
			if err := finding.Err(); err != nil {
				return xcontent.Result{}, err
			}
		}
		return withFile(f, func(r io.Reader) (xcontent.Result, error) {
			return p.validator.ValidateReader(name, r)
		})
	}
	return xcontent.Result{}, fmt.Errorf("xpipeline: unexpected staged file %T", file)
}

// withFile 以 Stat 时的大小为界读取 f，读完后确认文件没有在此期间变化，
// 否则返回 xstage.ErrSourceChanged，未被检查的字节不会随结果交出。
func withFile[T any](f *xstage.DiskFile, fn func(io.Reader) (T, error)) (T, error) {
	var zero T
	rc, err := f.Open()
	if err != nil {
		return zero, fmt.Errorf("xpipeline: open staged file: %w", err)
	}
	v, err := fn(io.LimitReader(rc, f.Size()))
	if err == nil {
		err = f.Verify(rc)
	}
	if err = errors.Join(err, rc.Close()); err != nil {
		return zero, err
	}
	return v, nil
}

// Release 释放暂存结果与锁标记。幂等，nil 安全，不会失败：
// 锁标记删除失败只记录日志，残留标记由清扫器按超时回收。
func (p *Pipeline) Release(ctx context.Context, s *Staged) {
	if s == nil {
		return
	}
	if err := s.release(false); err != nil {
		p.logger.Warn(ctx, "release lock marker failed", xlog.Err(err))
	}
}

// Use 执行 Stage，调用 fn，并在 fn 返回或 panic 时释放。
func (p *Pipeline) Use(ctx context.Context, req Request, fn func(context.Context, *Staged) error) error {
	s, err := p.Stage(ctx, req)
	if err != nil {
		return err
	}
	defer p.Release(ctx, s)
	return fn(ctx, s)
}
