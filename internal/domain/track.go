package domain

// Track 是配置声明的一条待处理条目。
// Destination 为空表示使用全局默认目录。
type Track struct {
	URL         string
	Destination string
}
