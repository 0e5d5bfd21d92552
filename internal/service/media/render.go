package media

import (
	"context"

	"docent/internal/config"
	"docent/internal/pkg/ffmpeg"
)

// Encoder 渲染后端，ffmpeg.Client 为默认实现
type Encoder interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
	EncodeTitleCard(ctx context.Context, spec ffmpeg.TitleCardSpec, outputPath string) error
	EncodeSlideshow(ctx context.Context, spec ffmpeg.SlideshowSpec, outputPath string) error
	ConcatClips(ctx context.Context, spec ffmpeg.ConcatSpec, outputPath string) error
}

var _ Encoder = (*ffmpeg.Client)(nil)

// RenderConfig 渲染参数（时长单位：秒）
type RenderConfig struct {
	Width         int
	Height        int
	FPS           int
	ImageInterval float64
	TitleDuration float64
	FadeDuration  float64

	TitleBackground string
	TitleFont       string
	TitleFontName   string
	TitleFontSize   int
	TitleColor      string
	TitleMaxChars   int

	VideoCodec string
	AudioCodec string
}

// RenderConfigFrom 从视频配置构造渲染参数
func RenderConfigFrom(cfg *config.VideoConfig) RenderConfig {
	return RenderConfig{
		Width:           cfg.Width,
		Height:          cfg.Height,
		FPS:             cfg.FPS,
		ImageInterval:   cfg.ImageInterval,
		TitleDuration:   cfg.TitleDuration,
		FadeDuration:    cfg.FadeDuration,
		TitleBackground: cfg.TitleBackground,
		TitleFont:       cfg.TitleFont,
		TitleFontName:   cfg.TitleFontName,
		TitleFontSize:   cfg.TitleFontSize,
		TitleColor:      cfg.TitleColor,
		TitleMaxChars:   cfg.TitleMaxChars,
		VideoCodec:      cfg.VideoCodec,
		AudioCodec:      cfg.AudioCodec,
	}
}

func (c RenderConfig) output() ffmpeg.Output {
	return ffmpeg.Output{
		Width:      c.Width,
		Height:     c.Height,
		FPS:        c.FPS,
		VideoCodec: c.VideoCodec,
		AudioCodec: c.AudioCodec,
	}
}
