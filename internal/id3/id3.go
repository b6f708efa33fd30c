// Package id3 负责把 TrackTags 写入音频文件内嵌的 ID3v2 标签容器。
package id3

import (
	"fmt"
	"os"

	id3v2 "github.com/bogem/id3v2/v2"

	"github.com/John-Robertt/yt2mp3/internal/domain"
)

// Result 描述一次写入中封面嵌入的结果。
// 封面嵌入失败不影响整体写入：ImageErr 由编排层决定如何呈现（警告）。
type Result struct {
	ImageEmbedded bool
	ImageErr      error
}

// Write 重写 path 的标签容器：清空全部既有帧后按 TrackTags 写入新帧。
//
// 契约：
// - 破坏性覆盖：转码器或旧标签写入的帧一律丢弃，不做合并
// - 未设置的字段不产生帧（而不是写空帧）
// - img 非空时嵌入单个 front cover 图片帧；嵌入失败只记录在 Result 里
// - 任何打开/持久化失败都以 error 返回，绝不 panic
//
// 已知限制：持久化是一次 Save 调用，本层不做暂存副本；中途失败可能把
// 容器留在“已清空但未写完”的中间态。
func Write(path string, t domain.TrackTags, img *domain.ImageAsset) (Result, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Result{}, fmt.Errorf("打开标签容器失败：%w", err)
	}
	defer tag.Close()

	tag.DeleteAllFrames()
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	// 展示必需字段（mapper 保证非空）。
	tag.SetTitle(t.Title)
	tag.SetArtist(t.Artist)
	tag.SetAlbum(t.Album)
	tag.SetGenre(t.Genre)
	addText(tag, "Band/Orchestra/Accompaniment", t.AlbumArtist) // TPE2

	// 可选字段：仅在设置时写帧。year 不单独写帧（TDRC 已携带日期）。
	addText(tag, "Recording time", t.Date)                       // TDRC
	addText(tag, "Track number/Position in set", t.TrackNumber)  // TRCK
	addText(tag, "Composer", t.Composer)                         // TCOM
	addText(tag, "Length", t.DurationMS)                         // TLEN

	if t.Comment != "" {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    "eng",
			Description: "",
			Text:        t.Comment,
		})
	}

	var res Result
	if img != nil {
		if data, err := os.ReadFile(img.Path); err != nil {
			res.ImageErr = fmt.Errorf("读取封面失败：%w", err)
		} else {
			tag.AddAttachedPicture(id3v2.PictureFrame{
				Encoding:    id3v2.EncodingUTF8,
				MimeType:    img.MIME,
				PictureType: id3v2.PTFrontCover,
				Description: "",
				Picture:     data,
			})
			res.ImageEmbedded = true
		}
	}

	if err := tag.Save(); err != nil {
		return Result{}, fmt.Errorf("持久化标签失败：%w", err)
	}
	return res, nil
}

func addText(tag *id3v2.Tag, commonName, value string) {
	if value == "" {
		return
	}
	tag.AddTextFrame(tag.CommonID(commonName), tag.DefaultEncoding(), value)
}
