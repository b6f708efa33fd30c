package domain

// TrackTags 是 mapper 归一化后的标签记录（核心唯一的持久数据结构）。
//
// 约束：
// - Title/Artist/Album/AlbumArtist/Genre 恒非空（缺失时回退到占位值，
//   保证展示必需字段不为空）
// - 其余字段空串表示“未设置”：writer 对未设置字段不写帧（而不是写空帧）
// - Comment 在追加统计后缀之前不超过 3000 字符；后缀允许使其超限
type TrackTags struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string

	// Date 是 ISO-8601 日期（upload_date 可解析时），否则原样透传。
	Date string
	// Year 是 4 位年份；upload_date 完全缺失时与 Date 一起保持未设置。
	Year string

	Genre       string
	TrackNumber string
	DurationMS  string
	Comment     string
	Composer    string

	ThumbnailURL string
	SourceURL    string
}
