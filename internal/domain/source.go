package domain

// SourceRecord 是抽取工具（yt-dlp）为单个条目输出的原始元数据。
//
// 约束：
// - 外部所有、只读；键值异构（字符串/数字/列表/嵌套映射）
// - 类型收敛全部由 mapper 负责：缺失/畸形字段降级为默认值，不得报错
type SourceRecord map[string]any
