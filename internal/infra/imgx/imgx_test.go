package imgx

import (
	"testing"

	"github.com/John-Robertt/yt2mp3/internal/domain"
)

func TestResolveMIME_ContentTypeFirst(t *testing.T) {
	// 声明的 Content-Type 优先于 URL 后缀。
	got := ResolveMIME("image/png; charset=binary", "http://x/cover.jpg")
	if got != domain.MIMEPNG {
		t.Fatalf("期望 image/png，实际 %q", got)
	}

	// image/jpg 是常见的非标准写法，归一到 image/jpeg。
	if got := ResolveMIME("image/jpg", ""); got != domain.MIMEJPEG {
		t.Fatalf("期望 image/jpeg，实际 %q", got)
	}
}

func TestResolveMIME_URLFallback(t *testing.T) {
	cases := map[string]string{
		"http://x/a.jpeg":       domain.MIMEJPEG,
		"http://x/a.png":        domain.MIMEPNG,
		"http://x/a.webp":       domain.MIMEWebP,
		"http://x/a.webp?v=123": domain.MIMEWebP,
		"http://x/a.PNG":        domain.MIMEPNG,
	}
	for u, want := range cases {
		if got := ResolveMIME("", u); got != want {
			t.Fatalf("ResolveMIME(%q)：期望 %q，实际 %q", u, want, got)
		}
	}

	// 未知声明类型也回退到 URL 后缀。
	if got := ResolveMIME("text/html", "http://x/a.png"); got != domain.MIMEPNG {
		t.Fatalf("期望回退到 URL 后缀，实际 %q", got)
	}
}

func TestResolveMIME_DefaultJPEG(t *testing.T) {
	if got := ResolveMIME("", "http://x/no-ext"); got != domain.MIMEJPEG {
		t.Fatalf("期望兜底 image/jpeg，实际 %q", got)
	}
	if got := ResolveMIME("", ""); got != domain.MIMEJPEG {
		t.Fatalf("期望兜底 image/jpeg，实际 %q", got)
	}
}

func TestExt(t *testing.T) {
	if Ext(domain.MIMEPNG) != ".png" || Ext(domain.MIMEWebP) != ".webp" || Ext(domain.MIMEJPEG) != ".jpg" {
		t.Fatalf("MIME 后缀映射不正确")
	}
	// 未知类型与 jpeg 同样落到 .jpg。
	if Ext("application/octet-stream") != ".jpg" {
		t.Fatalf("未知 MIME 应回退 .jpg")
	}
}
