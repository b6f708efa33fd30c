// Package fetch 负责把单张封面图下载到条目自己的 scratch 目录。
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/yt2mp3/internal/domain"
	"github.com/John-Robertt/yt2mp3/internal/infra/imgx"
)

// chunkSize 是流式落盘的块大小：大图不整块读进内存。
const chunkSize = 8 * 1024

// Thumbnail 下载 rawURL 指向的图片到 destDir，返回落盘后的 ImageAsset。
//
// 契约：
// - rawURL 为空：返回 (nil, nil)，不算错误（条目本来就可能没有封面）
// - 请求失败 / 非 2xx / 写盘失败：返回 (nil, err)；是否继续由编排层决定
// - 单次尝试，超时由 client 控制（30 秒）
func Thumbnail(ctx context.Context, c *http.Client, rawURL, destDir string) (*domain.ImageAsset, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, nil
	}
	if c == nil {
		return nil, errors.New("thumbnail client 为空")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	mimeType := imgx.ResolveMIME(resp.Header.Get("Content-Type"), rawURL)
	path := filepath.Join(destDir, "cover"+imgx.Ext(mimeType))

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	// 固定块大小的流式复制：峰值内存与图片体积无关。
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(f, resp.Body, buf); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	return &domain.ImageAsset{Path: path, MIME: mimeType}, nil
}
