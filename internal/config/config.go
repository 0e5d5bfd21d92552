package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// Config 应用配置根结构
type Config struct {
	OutputDir string        `mapstructure:"output_dir"`
	Log       LogConfig     `mapstructure:"log"`
	Search    SearchConfig  `mapstructure:"search"`
	AI        AIConfig      `mapstructure:"ai"`
	TTS       TTSConfig     `mapstructure:"tts"`
	Video     VideoConfig   `mapstructure:"video"`
	Storage   StorageConfig `mapstructure:"storage"`
	Cache     CacheConfig   `mapstructure:"cache"`
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// SearchConfig 检索阶段配置（参考文本 + 图片采集）
type SearchConfig struct {
	Provider     string        `mapstructure:"provider"`      // 图片搜索提供者（duckduckgo）
	Language     string        `mapstructure:"language"`      // Wikipedia 语言
	UserAgent    string        `mapstructure:"user_agent"`    // HTTP User-Agent
	TextDir      string        `mapstructure:"text_dir"`      // 章节文本 / 解说词 JSON 目录
	ImageDir     string        `mapstructure:"image_dir"`     // 图片目录
	NumImages    int           `mapstructure:"num_images"`    // 目标图片数
	BatchSize    int           `mapstructure:"batch_size"`    // 每批候选图片数
	MaxAttempts  int           `mapstructure:"max_attempts"`  // 最大批次数
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"` // 单张图片下载超时
}

// AIConfig AI 服务配置
type AIConfig struct {
	Provider string          `mapstructure:"provider"`
	APIKey   string          `mapstructure:"api_key"`
	Model    string          `mapstructure:"model"`
	BaseURL  string          `mapstructure:"base_url"`
	Options  AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig AI 模型参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// TTSConfig 语音合成配置
type TTSConfig struct {
	Provider    string  `mapstructure:"provider"`     // bytedance / command
	Command     string  `mapstructure:"command"`      // command 模式下的可执行文件（tts / edge-tts / 自定义）
	Model       string  `mapstructure:"model"`        // command 模式下传给 tts 的模型名
	Voice       string  `mapstructure:"voice"`        // edge-tts 发音人
	AccessToken string  `mapstructure:"access_token"` // bytedance 访问令牌
	AppID       string  `mapstructure:"app_id"`
	Cluster     string  `mapstructure:"cluster"`
	VoiceType   string  `mapstructure:"voice_type"`
	SampleRate  int     `mapstructure:"sample_rate"`
	SpeedRatio  float64 `mapstructure:"speed_ratio"`
	AudioDir    string  `mapstructure:"audio_dir"`
}

// VideoConfig 视频合成配置（时长单位：秒）
type VideoConfig struct {
	FPS             int     `mapstructure:"fps"`
	Width           int     `mapstructure:"width"`
	Height          int     `mapstructure:"height"`
	ImageInterval   float64 `mapstructure:"image_interval"`   // 每张图片显示时长
	TitleDuration   float64 `mapstructure:"title_duration"`   // 标题帧时长
	FadeDuration    float64 `mapstructure:"fade_duration"`    // 图片淡入淡出时长
	TitleBackground string  `mapstructure:"title_background"` // 标题背景图片
	TitleFont       string  `mapstructure:"title_font"`       // 字体文件路径（为空时使用 fontconfig 字体名）
	TitleFontName   string  `mapstructure:"title_font_name"`
	TitleFontSize   int     `mapstructure:"title_font_size"`
	TitleColor      string  `mapstructure:"title_color"`
	TitleMaxChars   int     `mapstructure:"title_max_chars"` // 标题每行最大字符数
	VideoCodec      string  `mapstructure:"video_codec"`
	AudioCodec      string  `mapstructure:"audio_codec"`
	OutputFile      string  `mapstructure:"output_file"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // none, local, oss
	Local *LocalConfig `mapstructure:"local,omitempty"`
	OSS   *OSSConfig   `mapstructure:"oss,omitempty"`
}

// LocalConfig 本地文件系统配置
type LocalConfig struct {
	BasePath string `mapstructure:"base_path"` // 基础路径
	BaseURL  string `mapstructure:"base_url"`  // 基础URL（用于生成访问URL）
}

// OSSConfig 阿里云OSS配置
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`          // OSS端点
	Bucket          string `mapstructure:"bucket"`            // Bucket名称
	AccessKeyID     string `mapstructure:"access_key_id"`     // AccessKey ID
	AccessKeySecret string `mapstructure:"access_key_secret"` // AccessKey Secret
}

// CacheConfig Redis 缓存配置（缓存大模型返回的原始解说词）
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Default 返回与 cmd 中 viper 默认值一致的配置，便于测试和库调用
func Default() *Config {
	return &Config{
		OutputDir: "output",
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			Output:     "stdout",
			TimeFormat: "RFC3339",
		},
		Search: SearchConfig{
			Provider:     "duckduckgo",
			Language:     "zh",
			UserAgent:    "docent/1.0 (video-generator)",
			TextDir:      "text",
			ImageDir:     "images",
			NumImages:    15,
			BatchSize:    20,
			MaxAttempts:  20,
			FetchTimeout: 10 * time.Second,
		},
		AI: AIConfig{
			Provider: "openai",
			Model:    "qwen2.5:3b",
			Options:  AIOptionsConfig{Temperature: 0.7, MaxTokens: 4096, TopP: 1.0},
		},
		TTS: TTSConfig{
			Provider:   "command",
			Command:    "tts",
			Model:      "tts_models/zh-CN/baker/tacotron2-DDC-GST",
			Voice:      "zh-CN-YunxiNeural",
			Cluster:    "volcano_tts",
			VoiceType:  "BV115_streaming",
			SampleRate: 44100,
			SpeedRatio: 1.0,
			AudioDir:   "audio",
		},
		Video: VideoConfig{
			FPS:             30,
			Width:           1280,
			Height:          720,
			ImageInterval:   4,
			TitleDuration:   2,
			FadeDuration:    0.5,
			TitleBackground: "title_bg.jpg",
			TitleFontName:   "SimHei",
			TitleFontSize:   70,
			TitleColor:      "black",
			TitleMaxChars:   16,
			VideoCodec:      "libx264",
			AudioCodec:      "aac",
			OutputFile:      "final_video.mp4",
		},
		Storage: StorageConfig{Type: "none"},
		Cache: CacheConfig{
			Addr: "localhost:6379",
			TTL:  24 * time.Hour,
		},
	}
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output_dir is required")
	}

	s := c.Search
	if s.NumImages <= 0 || s.BatchSize <= 0 || s.MaxAttempts <= 0 {
		return errors.New("search.num_images, search.batch_size and search.max_attempts must be positive")
	}
	if s.FetchTimeout <= 0 {
		return errors.New("search.fetch_timeout must be positive")
	}

	validAI := map[string]bool{"openai": true, "azure": true, "ark": true, "ark-sdk": true}
	if !validAI[c.AI.Provider] {
		return fmt.Errorf("invalid ai.provider %q, must be openai/azure/ark/ark-sdk", c.AI.Provider)
	}

	validTTS := map[string]bool{"bytedance": true, "command": true}
	if !validTTS[c.TTS.Provider] {
		return fmt.Errorf("invalid tts.provider %q, must be bytedance/command", c.TTS.Provider)
	}

	v := c.Video
	if v.FPS <= 0 || v.Width <= 0 || v.Height <= 0 {
		return errors.New("video.fps, video.width and video.height must be positive")
	}
	if v.ImageInterval <= 0 || v.TitleDuration <= 0 {
		return errors.New("video.image_interval and video.title_duration must be positive")
	}
	if v.FadeDuration < 0 || v.FadeDuration*2 >= v.ImageInterval {
		return errors.New("video.fade_duration must be within [0, image_interval/2)")
	}

	validStorage := map[string]bool{"": true, "none": true, "local": true, "oss": true}
	if !validStorage[c.Storage.Type] {
		return fmt.Errorf("invalid storage.type %q, must be none/local/oss", c.Storage.Type)
	}

	return nil
}

// ResolvePath 相对路径挂在 output_dir 下，绝对路径保持不变
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.OutputDir, p)
}
