package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"docent/internal/model/media"
	"docent/internal/pkg/ffmpeg"
)

// Assembler 视频组装器：按章节顺序拼接 标题帧 + 幻灯片
type Assembler struct {
	encoder Encoder
	cfg     RenderConfig
	titles  *TitleCardRenderer
	slides  *SlideshowSynthesizer
}

// NewAssembler 创建视频组装器
func NewAssembler(encoder Encoder, cfg RenderConfig, titles *TitleCardRenderer, slides *SlideshowSynthesizer) *Assembler {
	return &Assembler{encoder: encoder, cfg: cfg, titles: titles, slides: slides}
}

// Assemble 组装最终视频
//
// 找不到音频的章节记录警告后整体跳过（标题帧和幻灯片都不生成）；
// 图片池为空返回 ErrNoImages，没有任何片段返回 ErrNoClips。中间片段在返回前删除
func (a *Assembler) Assemble(ctx context.Context, sections []media.Section, images []media.ImageRecord, audio AudioLocator, outputPath string) (string, error) {
	if len(images) == 0 {
		return "", ErrNoImages
	}
	if err := a.titles.CheckBackground(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	workDir, err := os.MkdirTemp(filepath.Dir(outputPath), ".clips-")
	if err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	var clips []media.Clip
	for i, section := range sections {
		audioPath, ok := audio.Locate(section)
		if !ok {
			log.Warn().
				Str("section", section.ID).
				Str("title", section.Title).
				Msg("未找到章节音频，跳过该章节")
			continue
		}

		title, err := a.titles.Render(ctx, section.Title, filepath.Join(workDir, fmt.Sprintf("%04d_title.mp4", i+1)))
		if err != nil {
			return "", fmt.Errorf("render title card %s: %w", section.ID, err)
		}

		slides, err := a.slides.Synthesize(ctx, images,
			media.AudioClip{SectionID: section.ID, Path: audioPath},
			filepath.Join(workDir, fmt.Sprintf("%04d_slides.mp4", i+1)))
		if err != nil {
			return "", fmt.Errorf("render slideshow %s: %w", section.ID, err)
		}

		clips = append(clips, title, slides)
		log.Info().
			Str("section", section.ID).
			Float64("duration", title.Duration+slides.Duration).
			Msg("章节片段渲染完成")
	}

	if len(clips) == 0 {
		return "", ErrNoClips
	}

	paths := make([]string, len(clips))
	for i, clip := range clips {
		paths[i] = clip.Path
	}
	spec := ffmpeg.ConcatSpec{Output: a.cfg.output(), Clips: paths}
	if err := a.encoder.ConcatClips(ctx, spec, outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}
