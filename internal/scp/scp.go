// Package scp 把对远端复制客户端（scp）的调用限制在包内部。
package scp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/yt2mp3/internal/infra/fsx"
)

// stagingName 是传输前的本地暂存名：scp 对特殊字符的处理不可靠，
// 先用简单名字复制一份，再让远端落到清洗后的真实文件名上。
const stagingName = "song.mp3"

// Config 是传输所需的全部凭据/路径（启动时装配一次，显式传入）。
type Config struct {
	User       string
	Host       string
	Port       string
	KeyPath    string
	RemoteBase string
}

// Client 固化一次 scp 调用的方式。Bin 为空时使用 PATH 里的 scp。
type Client struct {
	Bin string
}

// Error 是传输阶段的可追溯错误（非零退出码附带 stderr）。
type Error struct {
	Remote string
	Err    error
	Stderr string
}

func (e *Error) Error() string {
	if strings.TrimSpace(e.Stderr) != "" {
		return fmt.Sprintf("scp 到 %s 失败：%v: %s", e.Remote, e.Err, strings.TrimSpace(e.Stderr))
	}
	return fmt.Sprintf("scp 到 %s 失败：%v", e.Remote, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Transfer 把 localPath 复制到远端的 <base>/<remoteFolder>/<清洗后文件名>。
//
// 约束：
// - 单次尝试；退出码非 0 即失败
// - 本地暂存副本（song.mp3）无论成败都会被清理
func (c Client) Transfer(ctx context.Context, cfg Config, localPath, remoteFolder string) error {
	if _, err := os.Stat(localPath); err != nil {
		return fmt.Errorf("本地文件不存在：%w", err)
	}

	staging := filepath.Join(filepath.Dir(localPath), stagingName)
	if err := fsx.CopyFile(localPath, staging); err != nil {
		return fmt.Errorf("创建暂存副本失败：%w", err)
	}
	defer os.Remove(staging)

	remote := RemotePath(cfg, remoteFolder, filepath.Base(localPath))

	bin := c.Bin
	if bin == "" {
		bin = "scp"
	}
	cmd := exec.CommandContext(ctx, bin, buildArgs(cfg, staging, remote)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &Error{Remote: remote, Err: err, Stderr: stderr.String()}
	}
	return nil
}

// RemotePath 组装 user@host:base/folder/filename 形态的目标路径。
func RemotePath(cfg Config, remoteFolder, filename string) string {
	return fmt.Sprintf("%s@%s:%s/%s/%s",
		cfg.User, cfg.Host, cfg.RemoteBase, remoteFolder, fsx.SanitizeFilename(filename))
}

func buildArgs(cfg Config, localPath, remote string) []string {
	return []string{
		"-P", cfg.Port,
		"-i", cfg.KeyPath,
		localPath,
		remote,
	}
}
