// Package planner 基于配置为每个条目生成确定性的放置计划
//（不做任何下载/写入，只做路径与标签推导）。
package planner

import (
	"path/filepath"

	"github.com/John-Robertt/yt2mp3/internal/config"
	"github.com/John-Robertt/yt2mp3/internal/domain"
	"github.com/John-Robertt/yt2mp3/internal/infra/fsx"
)

// ItemPlan 是单条目的放置计划。
// Label 既是本地模式的子目录名，也是远程模式的目标文件夹。
type ItemPlan struct {
	URL   string
	Label string
	Local bool
}

// Plan 推导单条目的放置计划。
//
// 规则（固定）：目录标签取第一个非空值
// track.Destination > default_destination > "Music"。
func Plan(track domain.Track, eff config.EffectiveConfig) ItemPlan {
	label := track.Destination
	if label == "" {
		label = eff.DefaultDestination
	}
	if label == "" {
		label = config.DefaultDestination
	}
	return ItemPlan{
		URL:   track.URL,
		Label: label,
		Local: eff.Local,
	}
}

// LocalPath 组装本地模式的最终落盘路径。
// 文件名在通用清洗之外额外把全角竖线映射为 '-'。
func (p ItemPlan) LocalPath(musicRoot, filename string) string {
	return filepath.Join(musicRoot, p.Label, fsx.SanitizeLocalFilename(filename))
}
