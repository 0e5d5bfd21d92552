package mediatools

import (
	"context"
)

// LLMProvider 定义了调用大模型的接口
// 具体的「如何调用大模型」由调用方通过实现此接口注入，方便单测和替换实现
type LLMProvider interface {
	// Generate 根据提示词生成文本
	Generate(ctx context.Context, prompt string) (string, error)
}

// TTSProvider TTS提供者接口（用于单测/替换实现）
type TTSProvider interface {
	// GenerateVoice 将文本合成为语音并写入 audioPath
	//
	// Args:
	//   - ctx: 上下文
	//   - text: 要转换的文本
	//   - audioPath: 音频文件保存路径（.wav）
	//   - speedRatio: 语速比例（默认1.0）
	GenerateVoice(ctx context.Context, text, audioPath string, speedRatio float64) (*TTSResult, error)
}

// ImageSearcher 图片搜索提供者接口
// 返回候选图片 URL，顺序即提供者的排序
type ImageSearcher interface {
	SearchImages(ctx context.Context, query string, maxResults int) ([]string, error)
}

// ResponseCache 大模型返回结果缓存（可选）
type ResponseCache interface {
	GetText(ctx context.Context, key string) (string, bool, error)
	SetText(ctx context.Context, key, value string) error
}

// TTSResult TTS生成结果
type TTSResult struct {
	AudioPath string  `json:"audio_path"` // 音频文件路径
	Duration  float64 `json:"duration"`   // 音频时长（秒），提供者无法给出时为 0
}
