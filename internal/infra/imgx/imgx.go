package imgx

import (
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/John-Robertt/yt2mp3/internal/domain"
)

// ResolveMIME 判定封面图的 MIME 类型。
//
// 判定顺序（固定）：
// 1) 响应声明的 Content-Type（去掉参数，仅接受已知的三种图片类型）
// 2) URL 的文件后缀
// 3) 兜底 image/jpeg
func ResolveMIME(contentType, rawURL string) string {
	if mt := fromContentType(contentType); mt != "" {
		return mt
	}
	if mt := fromURL(rawURL); mt != "" {
		return mt
	}
	return domain.MIMEJPEG
}

func fromContentType(ct string) string {
	ct = strings.TrimSpace(ct)
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	switch strings.ToLower(mt) {
	case domain.MIMEJPEG, "image/jpg":
		return domain.MIMEJPEG
	case domain.MIMEPNG:
		return domain.MIMEPNG
	case domain.MIMEWebP:
		return domain.MIMEWebP
	default:
		return ""
	}
}

func fromURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	// query/fragment 不属于后缀：先解析再取 path。
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".jpg", ".jpeg":
		return domain.MIMEJPEG
	case ".png":
		return domain.MIMEPNG
	case ".webp":
		return domain.MIMEWebP
	default:
		return ""
	}
}

// Ext 返回 MIME 对应的文件后缀（用于 scratch 内的落盘文件名）。
func Ext(mimeType string) string {
	switch mimeType {
	case domain.MIMEPNG:
		return ".png"
	case domain.MIMEWebP:
		return ".webp"
	default:
		return ".jpg"
	}
}
