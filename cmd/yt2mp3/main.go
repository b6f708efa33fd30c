package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/John-Robertt/yt2mp3/internal/app/run"
	"github.com/John-Robertt/yt2mp3/internal/config"
	"github.com/John-Robertt/yt2mp3/internal/domain"
	"github.com/John-Robertt/yt2mp3/internal/infra/fsx"
	"github.com/John-Robertt/yt2mp3/internal/ytdlp"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	switch args[0] {
	case "run":
		if code := runCmd(args[1:]); code != 0 {
			os.Exit(code)
		}
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func runCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printRunUsage()
			return 0
		}
	}

	ra, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printRunUsage()
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}

	// .env 是可选的：存在则把 SSH_* 等变量并入环境；不存在不报错。
	_ = godotenv.Load()

	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		ConfigPaths: ra.ConfigPaths,
		Local:       ra.Local,
		LocalSet:    ra.LocalSet,
		Verbose:     ra.Verbose,
	})
	if err != nil {
		emitReport(reportForFatal(ra, config.Code(err), err.Error()))
		return 1
	}

	// 外部工具缺失是批处理开始前的致命错误：一个都没法处理。
	if err := ytdlp.CheckDeps(); err != nil {
		emitReport(reportForFatal(ra, domain.ErrCodeDepMissing, err.Error()))
		return 1
	}

	progressW, interactive := pickProgressWriter()
	var obs run.Observer
	if interactive {
		obs = newProgressUI(progressW)
	}

	rr := run.Execute(context.Background(), eff, run.NewTools(eff), obs)

	if err := writeReportFile(eff.ConfigDir, rr); err != nil {
		fmt.Fprintf(os.Stderr, "写入 report.json 失败：%v\n", err)
		emitReport(rr)
		return 1
	}
	if err := writeFailuresFile(eff.ConfigDir, rr); err != nil {
		fmt.Fprintf(os.Stderr, "写入 failed_tracks.txt 失败：%v\n", err)
		emitReport(rr)
		return 1
	}

	emitReport(rr)
	if interactive {
		emitLocations(progressW, eff, rr)
	}
	if rr.Summary.Failed == 0 {
		return 0
	}
	return 1
}

type runArgs struct {
	ConfigPaths []string

	Local    bool
	LocalSet bool

	Verbose bool
}

func parseRunArgs(args []string) (runArgs, error) {
	ra := runArgs{}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--local":
			ra.Local = true
			ra.LocalSet = true
		case strings.HasPrefix(a, "--local="):
			v := strings.TrimPrefix(a, "--local=")
			switch v {
			case "true":
				ra.Local = true
			case "false":
				ra.Local = false
			default:
				return runArgs{}, fmt.Errorf("--local 只能是 true 或 false，实际是 %q", v)
			}
			ra.LocalSet = true
		case a == "--verbose":
			ra.Verbose = true
		case strings.HasPrefix(a, "-"):
			return runArgs{}, fmt.Errorf("未知参数 %q", a)
		default:
			ra.ConfigPaths = append(ra.ConfigPaths, a)
		}
	}

	return ra, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  yt2mp3 run [config.json ...] [--local[=true|false]] [--verbose]

命令：
  run    下载任务列表并打标签、放置（默认远程 scp 模式）

使用 "yt2mp3 run --help" 查看详细说明。
`)
}

func printRunUsage() {
	fmt.Fprint(os.Stdout, `用法：
  yt2mp3 run [config.json ...] [--local[=true|false]] [--verbose]

参数：
  config.json  一个或多个任务列表文件；未指定则读取 ./tracks.json
  --local      落盘到本地音乐目录而不是 scp 到远端；支持 --local=false
  --verbose    透传 yt-dlp 的过程输出
  -h, --help   显示帮助

环境（远程模式必需，可由 .env 提供）：
  SSH_USER SSH_HOST SSH_KEY_PATH REMOTE_BASE_PATH [SSH_PORT=22] [MUSIC_FOLDER=Music]
`)
}

func emitReport(rr domain.RunReport) {
	if isTTY(os.Stdout) {
		fmt.Fprintf(os.Stdout, "完成：transferred=%d failed=%d skipped=%d\n",
			rr.Summary.Transferred, rr.Summary.Failed, rr.Summary.Skipped,
		)
		if rr.Summary.Failed > 0 {
			for _, it := range rr.Items {
				if it.Status != domain.StatusFailed {
					continue
				}
				key := it.URL
				if key == "" {
					key = "<unknown>"
				}
				fmt.Fprintf(os.Stderr, "%s %s: %s\n", key, it.ErrorCode, it.ErrorMsg)
			}
		}
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（日志/摘要走 stderr）。
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(rr)
	fmt.Fprintf(os.Stderr, "完成：transferred=%d failed=%d skipped=%d\n",
		rr.Summary.Transferred, rr.Summary.Failed, rr.Summary.Skipped,
	)
}

// reportForFatal 把循环开始前的致命错误包装成单条合成 item 的报告，
// 保持 stdout JSON 契约在任何退出路径上都成立。
func reportForFatal(ra runArgs, code, msg string) domain.RunReport {
	now := time.Now().UTC()
	rr := domain.RunReport{
		Local:      ra.LocalSet && ra.Local,
		StartedAt:  now,
		FinishedAt: now,
		Items: []domain.ItemResult{{
			Status:     domain.StatusFailed,
			ErrorCode:  code,
			ErrorMsg:   msg,
			FinishedAt: now,
		}},
	}
	rr.Finalize()
	return rr
}

func writeReportFile(dir string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomicReplace(dir, "report.json", b)
}

// writeFailuresFile 只在存在失败条目时落盘；没有失败不留空文件。
func writeFailuresFile(dir string, rr domain.RunReport) error {
	text := rr.FailuresText()
	if text == "" {
		return nil
	}
	return fsx.WriteFileAtomicReplace(dir, "failed_tracks.txt", []byte(text))
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	// 某些环境（例如仅重定向 stderr）下，stdout 仍是 TTY：退化输出到 stdout。
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}

func emitLocations(w io.Writer, eff config.EffectiveConfig, rr domain.RunReport) {
	// 这两行用于降低“完成后不知道产物在哪”的摩擦，且不影响 stdout JSON 契约。
	if w == nil {
		return
	}
	fmt.Fprintf(w, "report: %s\n", filepath.Join(eff.ConfigDir, "report.json"))
	if rr.Summary.Failed > 0 {
		fmt.Fprintf(w, "failures: %s\n", filepath.Join(eff.ConfigDir, "failed_tracks.txt"))
	}
}
