package media

// ImageRecord 已校验的图片文件
// 同一次采集中，任意两条记录的来源 URL 都不相同
type ImageRecord struct {
	Index     int    `json:"index"`      // 采集序号（从 0 开始）
	Path      string `json:"path"`       // 本地文件路径
	SourceURL string `json:"source_url"` // 来源 URL
	Size      int64  `json:"size"`       // 文件大小（字节）
}

// AudioClip 章节音频
type AudioClip struct {
	SectionID string  `json:"section_id"`
	Path      string  `json:"path"`
	Duration  float64 `json:"duration"` // 时长（秒）
}

// Clip 中间视频片段
// 说明：以临时文件形式存在，拼接进最终视频后即被删除
type Clip struct {
	Path     string  `json:"path"`
	Duration float64 `json:"duration"` // 时长（秒）
}
