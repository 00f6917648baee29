package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xstage/pkg/config/xconf"
	"github.com/omeyang/xstage/pkg/lifecycle/xrun"
	"github.com/omeyang/xstage/pkg/observability/xlog"
	"github.com/omeyang/xstage/pkg/staging/xpipeline"
	"github.com/omeyang/xstage/pkg/staging/xsweep"
)

func createSweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "执行一轮清扫并输出报告",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer closeLog() //nolint:errcheck // 退出路径

			sw, err := xsweep.New(cfg.Sweep, xsweep.WithLogger(logger))
			if err != nil {
				return err
			}
			defer sw.Close() //nolint:errcheck // 退出路径

			report, err := sw.Sweep(ctx)
			fmt.Fprintf(cmd.Root().Writer, "roots_removed=%d locks_removed=%d failures=%d skipped=%d duration=%s\n",
				report.RootsRemoved, report.LocksRemoved, report.Failures, report.Skipped, report.Duration)
			return err
		},
	}
}

func createRunCommand() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "定时清扫并监视配置文件，直到收到退出信号",
		Action: cmdRun,
	}
}

func cmdRun(ctx context.Context, cmd *cli.Command) error {
	cfg, src, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck // 退出路径

	p, err := xpipeline.New(cfg, xpipeline.WithLogger(logger))
	if err != nil {
		return err
	}
	defer p.Close() //nolint:errcheck // 退出路径

	sw, err := p.NewSweeper()
	if err != nil {
		return err
	}

	services := []func(context.Context) error{xsweep.Service(sw, cfg.Sweep.Schedule)}
	if src != nil {
		r := &reloader{cmd: cmd, logger: logger, sweeper: sw, pipeline: p, current: cfg}
		w, err := xconf.NewWatcher(src, r.apply)
		if err != nil {
			return err
		}
		services = append(services, w.Run)
	}

	logger.Info(ctx, "xstagectl started",
		slog.String("version", Version),
		slog.String("schedule", cfg.Sweep.Schedule),
		slog.Bool("watch_config", src != nil),
	)
	err = xrun.RunWithOptions(ctx, []xrun.Option{xrun.WithLogger(logger), xrun.WithName("xstagectl")}, services...)
	var sigErr *xrun.SignalError
	if errors.As(err, &sigErr) {
		logger.Info(ctx, "xstagectl stopped", slog.String("signal", sigErr.Signal.String()))
		return nil
	}
	return err
}

// reloader 将配置文件的变更热应用到运行中的组件。
// 清扫计划与目录布局只在启动时读取，变更后需要重启。
type reloader struct {
	cmd      *cli.Command
	logger   xlog.LoggerWithLevel
	sweeper  *xsweep.Sweeper
	pipeline *xpipeline.Pipeline
	current  xpipeline.Config
}

func (r *reloader) apply(src xconf.Config, err error) {
	ctx := context.Background()
	if err != nil {
		r.logger.Warn(ctx, "config reload failed, keeping previous config", xlog.Err(err))
		return
	}
	next, err := xpipeline.Decode(src)
	if err == nil {
		next, err = applyOverrides(r.cmd, next)
	}
	if err != nil {
		r.logger.Warn(ctx, "invalid config ignored", xlog.Err(err))
		return
	}

	if err := r.sweeper.SetPolicy(next.Sweep.Policy); err != nil {
		r.logger.Warn(ctx, "sweep policy rejected", xlog.Err(err))
	}
	if err := r.pipeline.Validator().Update(next.Content); err != nil {
		r.logger.Warn(ctx, "content policy rejected", xlog.Err(err))
	}
	if level, err := xlog.ParseLevel(next.Log.Level); err == nil {
		r.logger.SetLevel(level)
	}
	if next.Sweep.Schedule != r.current.Sweep.Schedule || next.Sandbox.BaseDir != r.current.Sandbox.BaseDir {
		r.logger.Warn(ctx, "schedule or base_dir changed, restart to apply")
	}
	r.current = next
	r.logger.Info(ctx, "config reloaded", slog.String("level", r.logger.GetLevel().String()))
}

func createCheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "校验配置并以 JSON 输出生效值",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.Root().Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}
}

func createInspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "对沙箱内已有的文件执行全部校验关卡",
		ArgsUsage: "<相对路径>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return &usageError{msg: "inspect 需要且只需要一个相对路径"}
			}
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer closeLog() //nolint:errcheck // 退出路径

			p, err := xpipeline.New(cfg, xpipeline.WithLogger(logger))
			if err != nil {
				return err
			}
			defer p.Close() //nolint:errcheck // 退出路径

			out := cmd.Root().Writer
			s, err := p.Stage(ctx, xpipeline.Request{Candidate: cmd.Args().First()})
			if err != nil {
				fmt.Fprintf(out, "rejected kind=%s: %v\n", xpipeline.KindOf(err), err)
				return &exitError{code: 1}
			}
			defer p.Release(ctx, s)
			fmt.Fprintf(out, "accepted id=%s mode=%s size=%d type=%s\n",
				s.ID, s.Mode(), s.File.Size(), s.Content.Detected)
			return nil
		},
	}
}

// loadConfig 读取 --config（可省略）并应用命令行覆盖项。
func loadConfig(cmd *cli.Command) (xpipeline.Config, xconf.Config, error) {
	var (
		cfg = xpipeline.DefaultConfig()
		src xconf.Config
		err error
	)
	if path := cmd.String("config"); path != "" {
		if cfg, src, err = xpipeline.LoadConfig(path); err != nil {
			return xpipeline.Config{}, nil, err
		}
	}
	cfg, err = applyOverrides(cmd, cfg)
	return cfg, src, err
}

func applyOverrides(cmd *cli.Command, cfg xpipeline.Config) (xpipeline.Config, error) {
	if dir := cmd.String("base-dir"); dir != "" {
		cfg.Sandbox.BaseDir = dir
		cfg.Sweep.BaseDir = dir
	}
	if err := cfg.Validate(); err != nil {
		return xpipeline.Config{}, err
	}
	return cfg, nil
}
