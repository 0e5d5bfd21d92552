package media

import (
	"context"
	"fmt"
	"os"
	"strings"

	"docent/internal/model/media"
	"docent/internal/pkg/ffmpeg"
	"docent/internal/pkg/mediatools"
)

// TitleCardRenderer 标题帧渲染器
type TitleCardRenderer struct {
	encoder Encoder
	cfg     RenderConfig
	wrapper *mediatools.TitleWrapper
}

// NewTitleCardRenderer 创建标题帧渲染器，wrapper 为 nil 时使用 gse 分词换行
func NewTitleCardRenderer(encoder Encoder, cfg RenderConfig, wrapper *mediatools.TitleWrapper) *TitleCardRenderer {
	if wrapper == nil {
		wrapper = mediatools.NewTitleWrapper(cfg.TitleMaxChars)
	}
	return &TitleCardRenderer{encoder: encoder, cfg: cfg, wrapper: wrapper}
}

// CheckBackground 背景图片不存在时返回 ErrTitleBackgroundMissing
func (r *TitleCardRenderer) CheckBackground() error {
	info, err := os.Stat(r.cfg.TitleBackground)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrTitleBackgroundMissing, r.cfg.TitleBackground)
	}
	return nil
}

// Render 渲染固定时长的标题帧
func (r *TitleCardRenderer) Render(ctx context.Context, title, outputPath string) (media.Clip, error) {
	if err := r.CheckBackground(); err != nil {
		return media.Clip{}, err
	}

	// drawtext 从文件读取标题，避免滤镜转义
	textFile := strings.TrimSuffix(outputPath, ".mp4") + ".txt"
	if err := os.WriteFile(textFile, []byte(r.wrapper.Wrap(title)), 0644); err != nil {
		return media.Clip{}, fmt.Errorf("write title text: %w", err)
	}
	defer os.Remove(textFile)

	spec := ffmpeg.TitleCardSpec{
		Output:     r.cfg.output(),
		Background: r.cfg.TitleBackground,
		TextFile:   textFile,
		FontFile:   r.cfg.TitleFont,
		FontName:   r.cfg.TitleFontName,
		FontSize:   r.cfg.TitleFontSize,
		FontColor:  r.cfg.TitleColor,
		Duration:   r.cfg.TitleDuration,
	}
	if err := r.encoder.EncodeTitleCard(ctx, spec, outputPath); err != nil {
		return media.Clip{}, err
	}

	return media.Clip{Path: outputPath, Duration: r.cfg.TitleDuration}, nil
}
