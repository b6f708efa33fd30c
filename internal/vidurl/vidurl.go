// Package vidurl 在进入流水线之前把输入 URL 规范化。
package vidurl

import "strings"

// Canonical 清理视频 URL 里的多余参数。
//
// 规则（与既有行为保持一致）：
// - 无查询串：原样返回
// - 查询串里有独立的 v= 参数：重写为规范的 watch?v=<id> 形态
//   （丢弃 list/t/si 等附加参数，避免抽取工具展开整个播放列表）
// - 查询串里没有 v= 参数（例如 youtu.be 短链）：只保留 base 部分
func Canonical(raw string) string {
	raw = strings.TrimSpace(raw)
	i := strings.Index(raw, "?")
	if i < 0 {
		return raw
	}

	base, params := raw[:i], raw[i+1:]
	if !strings.Contains(params, "v=") {
		return base
	}
	for _, p := range strings.Split(params, "&") {
		if strings.HasPrefix(p, "v=") && len(p) > 2 {
			return "https://www.youtube.com/watch?v=" + p[2:]
		}
	}
	// "v=" 只出现在某个值内部：不动原始 URL（宁可多传参数也不要改错）。
	return raw
}
