package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	StatusTransferred = "transferred"
	StatusFailed      = "failed"
	StatusSkipped     = "skipped"
)

const (
	ErrCodeConfigNotFound      = "config_not_found"
	ErrCodeConfigInvalid       = "config_invalid"
	ErrCodeConfigMissingTracks = "config_missing_tracks"
	ErrCodeDepMissing          = "dep_missing"
	ErrCodeDownloadFailed      = "download_failed"
	ErrCodeTransferFailed      = "transfer_failed"
	ErrCodeIOFailed            = "io_failed"
)

// RunReport 是对外稳定输出（report.json / stdout JSON）的结构。
type RunReport struct {
	Local bool `json:"local"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Transferred int `json:"transferred"`
	Failed      int `json:"failed"`
	Skipped     int `json:"skipped"`
}

// ItemResult 是单条 track 的处理结果。
//
// 约束：
// - TagWarning 非空不改变 Status：标签/封面失败只是警告，音频已产出并
//   放置成功的条目仍计为 transferred
// - FinishedAt 用于失败报告中的时间戳（统一 UTC）
type ItemResult struct {
	Index       int    `json:"index"`
	URL         string `json:"url"`
	Destination string `json:"destination"`

	Title string `json:"title"`
	File  string `json:"file"`

	Status     string `json:"status"`
	ErrorCode  string `json:"error_code"`
	ErrorMsg   string `json:"error_msg"`
	TagWarning string `json:"tag_warning"`

	FinishedAt time.Time `json:"finished_at"`
}

// Finalize 做两件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) summary 由 items 计算得出
//
// items 保持输入顺序：执行是严格串行的，顺序本身就是信息。
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	for i := range r.Items {
		r.Items[i].FinishedAt = r.Items[i].FinishedAt.UTC()
	}

	var s ReportSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusTransferred:
			s.Transferred++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}

// FailuresText 渲染纯文本失败报告：每条失败一段，含 URL、目标、错误、时间戳。
// 没有失败条目时返回空串（调用方据此决定是否落盘）。
func (r RunReport) FailuresText() string {
	var b strings.Builder
	for _, it := range r.Items {
		if it.Status != StatusFailed {
			continue
		}
		fmt.Fprintf(&b, "url: %s\n", it.URL)
		fmt.Fprintf(&b, "destination: %s\n", it.Destination)
		fmt.Fprintf(&b, "error: %s: %s\n", it.ErrorCode, it.ErrorMsg)
		fmt.Fprintf(&b, "time: %s\n\n", it.FinishedAt.UTC().Format(time.RFC3339))
	}
	return b.String()
}
