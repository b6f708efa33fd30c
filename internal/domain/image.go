package domain

// ImageAsset 描述一张已落盘到 scratch 目录的封面图。
//
// 约束：
// - Path 指向 scratch 内的单个文件；条目结束后随 scratch 一起丢弃
// - MIME 只会是 image/jpeg / image/png / image/webp；无法判定时为 jpeg
type ImageAsset struct {
	Path string
	MIME string
}

const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEWebP = "image/webp"
)
