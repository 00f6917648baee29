// xstagectl 是暂存区的运维守护进程与命令行工具。
//
// 用法:
//
//	xstagectl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config    配置文件路径（YAML/JSON），省略时使用内置默认值
//	--base-dir      覆盖 sandbox.base_dir
//
// 命令:
//
//	sweep            执行一轮清扫并输出报告
//	run              启动时清扫一次，然后按计划清扫并监视配置文件，直到收到信号
//	check            校验配置并输出生效值
//	inspect <path>   对沙箱内已有的文件执行全部关卡，凭据取自环境变量
//
// 退出码:
//
//	0: 成功
//	1: 执行失败或 inspect 被拒绝
//	2: 参数错误
//
// 示例:
//
//	xstagectl -c /etc/xstage.yaml run
//	xstagectl --base-dir /srv/xstage sweep
//	XSTAGE_API_KEY=... xstagectl inspect reports/q3.csv
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args))
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "xstagectl",
		Usage:   "安全暂存区运维工具",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径（.yaml/.yml/.json）",
			},
			&cli.StringFlag{
				Name:  "base-dir",
				Usage: "覆盖 sandbox.base_dir",
			},
		},
		Commands: []*cli.Command{
			createSweepCommand(),
			createRunCommand(),
			createCheckCommand(),
			createInspectCommand(),
		},
		// 由 run() 统一映射退出码，不让 urfave/cli 直接 os.Exit
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run(ctx context.Context, args []string) int {
	return exitCode(createApp().Run(ctx, args))
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
		return 2
	}
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return 2
	}
	fmt.Fprintf(os.Stderr, "错误: %v\n", err)
	return 1
}

// exitError 已完成输出、只需要非零退出码的场景。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// usageError 参数错误，退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }
