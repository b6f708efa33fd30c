package run

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/John-Robertt/yt2mp3/internal/app/planner"
	"github.com/John-Robertt/yt2mp3/internal/config"
	"github.com/John-Robertt/yt2mp3/internal/domain"
	"github.com/John-Robertt/yt2mp3/internal/fetch"
	"github.com/John-Robertt/yt2mp3/internal/id3"
	"github.com/John-Robertt/yt2mp3/internal/infra/fsx"
	"github.com/John-Robertt/yt2mp3/internal/infra/httpx"
	"github.com/John-Robertt/yt2mp3/internal/meta"
	"github.com/John-Robertt/yt2mp3/internal/scp"
	"github.com/John-Robertt/yt2mp3/internal/vidurl"
	"github.com/John-Robertt/yt2mp3/internal/ytdlp"
)

// Extractor 是抽取工具的最小面（便于测试替换）。
type Extractor interface {
	Extract(ctx context.Context, url, scratchDir string) (domain.SourceRecord, string, error)
}

// RemoteCopier 是远程放置的最小面。
type RemoteCopier interface {
	Transfer(ctx context.Context, localPath, remoteFolder string) error
}

// Tools 汇集执行所需的外部协作方（启动时装配一次）。
type Tools struct {
	Extractor Extractor
	Thumb     *http.Client
	Remote    RemoteCopier

	// MusicRoot 是本地模式的落盘根目录；为空时用 <home>/<MUSIC_FOLDER>。
	MusicRoot string
}

// NewTools 按最终配置装配默认协作方。
func NewTools(eff config.EffectiveConfig) Tools {
	return Tools{
		Extractor: ytdlp.Client{Verbose: eff.Verbose},
		Thumb:     httpx.NewThumbClient(),
		Remote: remoteCopier{cfg: scp.Config{
			User:       eff.Transfer.User,
			Host:       eff.Transfer.Host,
			Port:       eff.Transfer.Port,
			KeyPath:    eff.Transfer.KeyPath,
			RemoteBase: eff.Transfer.RemoteBase,
		}},
	}
}

type remoteCopier struct {
	client scp.Client
	cfg    scp.Config
}

func (r remoteCopier) Transfer(ctx context.Context, localPath, remoteFolder string) error {
	return r.client.Transfer(ctx, r.cfg, localPath, remoteFolder)
}

// Execute 对整个任务列表执行一次 run，并返回对外稳定的 RunReport。
//
// 约束：
// - 严格串行：一条结束才开始下一条
// - 单条的任何错误（含 panic）只影响该条目；循环继续
// - 标签/封面失败只记 TagWarning；音频产出并放置成功即 transferred
func Execute(ctx context.Context, eff config.EffectiveConfig, tools Tools, obs Observer) domain.RunReport {
	started := time.Now().UTC()

	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		Local:     eff.Local,
		StartedAt: started,
		Items:     make([]domain.ItemResult, 0, len(eff.Tracks)),
	}

	musicRoot := ""
	if eff.Local {
		root, err := resolveMusicRoot(tools.MusicRoot, eff.Transfer.MusicFolder)
		if err != nil {
			rr.Items = append(rr.Items, domain.ItemResult{
				Status:     domain.StatusFailed,
				ErrorCode:  domain.ErrCodeIOFailed,
				ErrorMsg:   fmt.Sprintf("无法确定本地音乐目录：%v", err),
				FinishedAt: time.Now().UTC(),
			})
			rr.FinishedAt = time.Now().UTC()
			rr.Finalize()
			return rr
		}
		musicRoot = root
	}

	total := len(eff.Tracks)
	for i, tr := range eff.Tracks {
		oneStarted := time.Now()
		p := planner.Plan(tr, eff)

		res := execOne(ctx, p, tools, musicRoot)
		res.Index = i
		res.FinishedAt = time.Now().UTC()
		rr.Items = append(rr.Items, res)

		if obs != nil {
			obs.OnItemDone(i+1, total, res, time.Since(oneStarted))
		}
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

// execOne 处理单条 track。所有产物先进 scratch 目录，放置是最后一步。
// panic 在这里被挡住：恢复为 item 级失败，不让单条异常中断整个批次。
func execOne(ctx context.Context, p planner.ItemPlan, tools Tools, musicRoot string) (res domain.ItemResult) {
	res = domain.ItemResult{
		URL:         p.URL,
		Destination: p.Label,
		Status:      domain.StatusTransferred,
	}
	defer func() {
		if r := recover(); r != nil {
			res.Status = domain.StatusFailed
			res.ErrorCode = domain.ErrCodeIOFailed
			res.ErrorMsg = fmt.Sprintf("panic: %v", r)
		}
	}()

	if strings.TrimSpace(p.URL) == "" {
		res.Status = domain.StatusSkipped
		res.ErrorMsg = "配置条目缺少 url"
		return res
	}

	scratch, err := os.MkdirTemp("", "yt2mp3-*")
	if err != nil {
		res.Status = domain.StatusFailed
		res.ErrorCode = domain.ErrCodeIOFailed
		res.ErrorMsg = fmt.Sprintf("创建临时目录失败：%v", err)
		return res
	}
	defer os.RemoveAll(scratch)

	rec, audioPath, err := tools.Extractor.Extract(ctx, vidurl.Canonical(p.URL), scratch)
	if err != nil {
		res.Status = domain.StatusFailed
		res.ErrorCode = domain.ErrCodeDownloadFailed
		res.ErrorMsg = err.Error()
		return res
	}

	tags := meta.Map(rec)
	res.Title = tags.Title

	// 标签阶段的失败一律降级为警告：音频本身是可用的。
	var warnings []string

	img, err := fetch.Thumbnail(ctx, tools.Thumb, tags.ThumbnailURL, scratch)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("封面下载失败：%v", err))
		img = nil
	}

	wres, err := id3.Write(audioPath, tags, img)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("标签写入失败：%v", err))
	} else if wres.ImageErr != nil {
		warnings = append(warnings, fmt.Sprintf("封面嵌入失败：%v", wres.ImageErr))
	}
	res.TagWarning = strings.Join(warnings, "；")

	filename := filepath.Base(audioPath)
	if p.Local {
		dst := p.LocalPath(musicRoot, filename)
		res.File = dst
		if err := fsx.CopyFile(audioPath, dst); err != nil {
			res.Status = domain.StatusFailed
			res.ErrorCode = domain.ErrCodeIOFailed
			res.ErrorMsg = fmt.Sprintf("本地复制失败：%v", err)
			return res
		}
		return res
	}

	res.File = fsx.SanitizeFilename(filename)
	if err := tools.Remote.Transfer(ctx, audioPath, p.Label); err != nil {
		res.Status = domain.StatusFailed
		res.ErrorCode = domain.ErrCodeTransferFailed
		res.ErrorMsg = err.Error()
		return res
	}
	return res
}

func resolveMusicRoot(override, folder string) (string, error) {
	if strings.TrimSpace(override) != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(folder) == "" {
		folder = "Music"
	}
	return filepath.Join(home, folder), nil
}
