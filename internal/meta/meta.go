// Package meta 把抽取工具输出的异构 SourceRecord 归一化为固定的标签
// 记录 TrackTags。这是整条流水线里唯一有真正数据变换逻辑的部分。
package meta

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/John-Robertt/yt2mp3/internal/domain"
)

const (
	// UnknownTitle / UnknownArtist / DefaultGenre 是展示必需字段的占位值。
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"
	DefaultGenre  = "Music"

	// DefaultSite 用于合成专辑名（source 未给出站点名时）。
	DefaultSite = "YouTube"

	// CommentLimit 是追加统计后缀之前的 comment 上限（字符数，不是字节数）。
	CommentLimit = 3000
)

// genreKeywords 是自由文本 tag 的流派关键词（全部小写，按包含匹配）。
var genreKeywords = []string{
	"music", "song", "pop", "rock", "hip hop", "electronic", "jazz", "classical",
}

// Map 把一条 SourceRecord 映射为 TrackTags。
//
// 约束：
// - 纯函数：无 I/O、无失败路径；缺失/畸形字段降级为默认值
// - 字段派生规则必须与既有产物保持兼容（细节见各 helper）
func Map(rec domain.SourceRecord) domain.TrackTags {
	var t domain.TrackTags

	t.Title = UnknownTitle
	if s := str(rec, "title"); s != "" {
		t.Title = s
	}

	uploader := str(rec, "uploader")
	t.Artist = uploader
	if t.Artist == "" {
		t.Artist = UnknownArtist
	}
	t.AlbumArtist = t.Artist
	// composer 允许为空（uploader 缺失时不回退占位值）。
	t.Composer = uploader

	// album：属于播放列表时用列表标题，否则合成 "<artist> - <站点名>"。
	if pl := playlistTitle(rec); pl != "" {
		t.Album = pl
	} else {
		site := str(rec, "extractor_key")
		if site == "" {
			site = DefaultSite
		}
		t.Album = t.Artist + " - " + site
	}

	t.Date, t.Year = dateYear(str(rec, "upload_date"))
	t.Genre = genre(rec)

	// track_number：仅当属于播放列表且有位置序号时设置。
	if playlistTitle(rec) != "" {
		if idx, ok := num(rec["playlist_index"]); ok {
			t.TrackNumber = strconv.FormatInt(int64(idx), 10)
		}
	}

	if d, ok := num(rec["duration"]); ok {
		t.DurationMS = strconv.FormatInt(int64(math.Round(d*1000)), 10)
	}

	t.Comment = comment(rec)
	t.ThumbnailURL = thumbnailURL(rec)
	t.SourceURL = str(rec, "webpage_url")

	return t
}

// dateYear 解析 yt-dlp 的 upload_date（期望 8 位 YYYYMMDD）。
//
// 规则：
// - 完全缺失（空串）：两个字段都保持未设置
// - 可解析：date=YYYY-MM-DD，year=前 4 位
// - 不可解析：date 原样透传；year 取前 4 个字符（不足 4 个则不设置）
func dateYear(raw string) (date, year string) {
	if raw == "" {
		return "", ""
	}
	if len(raw) == 8 {
		if d, err := time.Parse("20060102", raw); err == nil {
			return d.Format("2006-01-02"), raw[:4]
		}
	}
	date = raw
	if len(raw) >= 4 {
		year = raw[:4]
	}
	return date, year
}

// genre 的选取顺序：categories 首项 > 命中流派关键词的首个 tag > "Music"。
func genre(rec domain.SourceRecord) string {
	if cats := strList(rec, "categories"); len(cats) > 0 {
		return cats[0]
	}
	if tags := strList(rec, "tags"); len(tags) > 0 {
		for _, tg := range tags {
			low := strings.ToLower(tg)
			for _, kw := range genreKeywords {
				if strings.Contains(low, kw) {
					return tg
				}
			}
		}
	}
	return DefaultGenre
}

// comment：description 截断到 CommentLimit 个字符，之后按需追加统计块。
// 统计块允许把总长推过上限（这是接受的行为，不是不变量破坏）。
func comment(rec domain.SourceRecord) string {
	c := str(rec, "description")
	if utf8.RuneCountInString(c) > CommentLimit {
		c = string([]rune(c)[:CommentLimit])
	}

	views, hasViews := num(rec["view_count"])
	likes, hasLikes := num(rec["like_count"])
	if !hasViews && !hasLikes {
		return c
	}

	parts := make([]string, 0, 2)
	if hasViews {
		parts = append(parts, "Views: "+groupThousands(int64(views)))
	}
	if hasLikes {
		parts = append(parts, "Likes: "+groupThousands(int64(likes)))
	}
	block := "[Stats: " + strings.Join(parts, " | ") + "]"

	if c == "" {
		return block
	}
	return c + "\n\n" + block
}

// thumbnailURL：优先 source 预选的单个 thumbnail；否则在 thumbnails
// 候选里取 width*height 最大的一项；两者都没有则保持未设置。
func thumbnailURL(rec domain.SourceRecord) string {
	if u := str(rec, "thumbnail"); u != "" {
		return u
	}

	list, ok := rec["thumbnails"].([]any)
	if !ok {
		return ""
	}
	best := ""
	bestArea := -1.0
	for _, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		u, _ := m["url"].(string)
		if u == "" {
			continue
		}
		w, _ := num(m["width"])
		h, _ := num(m["height"])
		if a := w * h; a > bestArea {
			bestArea = a
			best = u
		}
	}
	return best
}

// groupThousands 用与 locale 无关的 "," 做千分组。
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(s[i])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func playlistTitle(rec domain.SourceRecord) string {
	if s := str(rec, "playlist_title"); s != "" {
		return s
	}
	return str(rec, "playlist")
}

func str(rec domain.SourceRecord, key string) string {
	s, _ := rec[key].(string)
	return s
}

func strList(rec domain.SourceRecord, key string) []string {
	raw, ok := rec[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// num 收敛 JSON 数值的常见形态（encoding/json 默认给 float64；
// 测试里手写的 record 可能直接用 int）。
func num(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
