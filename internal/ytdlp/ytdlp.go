// Package ytdlp 把对抽取工具（yt-dlp + ffmpeg）的调用限制在包内部；
// 核心流程只依赖稳定的 SourceRecord 与产出文件路径。
package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/yt2mp3/internal/domain"
)

const (
	defaultBin = "yt-dlp"
	ffmpegBin  = "ffmpeg"
)

// 通过可替换的函数指针，让测试能稳定模拟依赖缺失。
var lookPath = exec.LookPath

// DepError 表示必需的外部工具不在 PATH 中（批处理开始前的致命错误）。
type DepError struct {
	Tool string
}

func (e *DepError) Error() string {
	return fmt.Sprintf("缺少外部依赖：%s 不在 PATH 中", e.Tool)
}

func IsDepMissing(err error) bool {
	var e *DepError
	return errors.As(err, &e)
}

// Error 是抽取阶段的可追溯错误。
// 上层据此把失败归类（全部映射为 download_failed，但 Stage 保留在消息里）。
type Error struct {
	Stage  string // "run" / "parse" / "locate"
	Err    error
	Stderr string // run 失败时附带的 stderr 尾部
}

func (e *Error) Error() string {
	if strings.TrimSpace(e.Stderr) != "" {
		return fmt.Sprintf("yt-dlp stage=%s: %v: %s", e.Stage, e.Err, e.Stderr)
	}
	return fmt.Sprintf("yt-dlp stage=%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// CheckDeps 校验 yt-dlp 与 ffmpeg 都在 PATH 中。
// ffmpeg 由 yt-dlp 调用做转码：缺了它下载能成功但产不出 MP3。
func CheckDeps() error {
	for _, tool := range []string{defaultBin, ffmpegBin} {
		if _, err := lookPath(tool); err != nil {
			return &DepError{Tool: tool}
		}
	}
	return nil
}

// Client 固化一次抽取调用的方式。
type Client struct {
	// Bin 为空时使用默认的 yt-dlp；测试用它替换为桩脚本。
	Bin string
	// Verbose 关闭 --quiet，让 yt-dlp 的过程输出透传到 stderr。
	Verbose bool
}

// Extract 对单个 URL 执行“下载 + 转码 + 元数据落盘”，全部产物进 scratchDir。
//
// 返回：
// - rec：解析后的 *.info.json（SourceRecord）
// - audioPath：scratch 内产出的 MP3 绝对路径
//
// 约束：单次尝试，不重试；取消由 ctx 透传给子进程。
func (c Client) Extract(ctx context.Context, url, scratchDir string) (domain.SourceRecord, string, error) {
	bin := c.Bin
	if bin == "" {
		bin = defaultBin
	}

	cmd := exec.CommandContext(ctx, bin, buildArgs(url, scratchDir, c.Verbose)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if c.Verbose {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		return nil, "", &Error{Stage: "run", Err: err, Stderr: tail(stderr.String(), 500)}
	}

	rec, err := readInfoJSON(scratchDir)
	if err != nil {
		return nil, "", &Error{Stage: "parse", Err: err}
	}

	audioPath, err := findAudio(scratchDir)
	if err != nil {
		return nil, "", &Error{Stage: "locate", Err: err}
	}
	return rec, audioPath, nil
}

// buildArgs 组装 yt-dlp 参数。输出模板固定为标题命名，便于后续放置。
func buildArgs(url, scratchDir string, verbose bool) []string {
	args := []string{
		"-f", "bestaudio/best",
		"-x", "--audio-format", "mp3", "--audio-quality", "192",
		"--no-playlist",
		"--write-info-json",
		"-P", scratchDir,
		"-o", "%(title)s.%(ext)s",
	}
	if !verbose {
		args = append(args, "--quiet")
	}
	return append(args, url)
}

// readInfoJSON 读取 scratch 内唯一的 *.info.json 并解析为 SourceRecord。
func readInfoJSON(dir string) (domain.SourceRecord, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.info.json"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("scratch 目录里没有 *.info.json：%s", dir)
	}
	// --no-playlist 下只会有一个；稳妥起见取排序后的第一个。
	sort.Strings(matches)

	b, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, err
	}
	var rec domain.SourceRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("解析 %s 失败：%w", filepath.Base(matches[0]), err)
	}
	return rec, nil
}

// findAudio 在 scratch 内定位产出的 MP3（应当恰好一个）。
func findAudio(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.mp3"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("scratch 目录里没有 *.mp3：%s", dir)
	}
	sort.Strings(matches)
	return matches[0], nil
}

func tail(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}
