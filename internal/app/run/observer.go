package run

import (
	"time"

	"github.com/John-Robertt/yt2mp3/internal/config"
	"github.com/John-Robertt/yt2mp3/internal/domain"
)

// Observer 用于把“运行进度/条目结果”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - 执行是严格串行的，但 OnProgress 可能由 CLI 的 ticker goroutine 触发，
//   实现仍需并发安全。
type Observer interface {
	// OnStart 在 Execute 开始时调用（应尽量早，保证用户 1 秒内看到输出）。
	OnStart(eff config.EffectiveConfig)
	// OnItemDone 在某条 track 处理完成时调用（用于每条结果的一行输出）。
	OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration)
	// OnProgress 用于 keepalive（由 CLI 自己的 ticker 触发；run 层不强制调用）。
	OnProgress(done, total, ok, fail, skip int, current string, elapsed time.Duration)
}
