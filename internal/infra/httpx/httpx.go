package httpx

import (
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// defaultTimeout 是缩略图下载的总超时（规格固定 30 秒）。
const defaultTimeout = 30 * time.Second

// Transport 把“UA 池 + keep-alive 策略”固化为统一策略。
//
// 设计目标：fetch 层只负责“拿到响应 + 流式落盘”，不关心网络策略细节。
// 注意：不做重试——每个条目只允许一次尝试（产品契约）。
type Transport struct {
	Base *http.Transport

	ua *uaPool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// Clone 会复制 Header 等，避免在 RoundTripper 内部“污染”调用方的 request。
	r := req.Clone(req.Context())
	if r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", t.ua.random())
	}
	return t.Base.RoundTrip(r)
}

// NewThumbClient 构造用于缩略图下载的 HTTP client。
//
// 规则：
// - 内置 UA 池：每个请求随机 UA
// - 总超时 30 秒；单次尝试，不重试
func NewThumbClient() *http.Client {
	base := &http.Transport{
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
	}
	return &http.Client{
		Transport: &Transport{Base: base, ua: globalUA},
		Timeout:   defaultTimeout,
	}
}

type uaPool struct {
	mu  sync.Mutex
	rnd *rand.Rand
	uas []string
}

func (p *uaPool) random() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uas[p.rnd.Intn(len(p.uas))]
}

var globalUA = newUAPool()

func newUAPool() *uaPool {
	// 尽量保持 UA 列表短小但多样；未来可扩充（不对外暴露配置）。
	uas := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_6) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	}
	return &uaPool{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		uas: uas,
	}
}
