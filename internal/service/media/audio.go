package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"docent/internal/model/media"
	"docent/internal/pkg/mediatools"
)

// AudioPath 章节音频路径 {audio_dir}/{id}.wav
func AudioPath(dir string, section media.Section) string {
	id := section.ID
	if id == "" {
		id = media.SanitizeTitle(section.Title)
	}
	return filepath.Join(dir, id+".wav")
}

// AudioLocator 按章节定位音频文件
type AudioLocator interface {
	Locate(section media.Section) (string, bool)
}

// DirAudioLocator 在目录中按 {id}.wav 查找音频
type DirAudioLocator struct {
	Dir string
}

// Locate 实现 AudioLocator
func (l DirAudioLocator) Locate(section media.Section) (string, bool) {
	p := AudioPath(l.Dir, section)
	info, err := os.Stat(p)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return "", false
	}
	return p, true
}

// AudioService 语音阶段：逐章节合成 wav
type AudioService struct {
	tts        mediatools.TTSProvider
	cleaner    *mediatools.TextCleaner
	dir        string
	speedRatio float64
}

// NewAudioService 创建语音服务
func NewAudioService(tts mediatools.TTSProvider, dir string, speedRatio float64) *AudioService {
	if speedRatio <= 0 {
		speedRatio = 1.0
	}
	return &AudioService{
		tts:        tts,
		cleaner:    mediatools.NewTextCleaner(),
		dir:        dir,
		speedRatio: speedRatio,
	}
}

// Synthesize 按顺序为每个章节生成音频
// 清理后内容为空的章节跳过（视频阶段会因找不到音频而跳过该章节）；TTS 失败直接返回错误
func (s *AudioService) Synthesize(ctx context.Context, sections []media.Section) ([]media.AudioClip, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}

	clips := make([]media.AudioClip, 0, len(sections))
	for i, section := range sections {
		text := s.cleaner.CleanTextForTTS(section.Content)
		if text == "" {
			log.Warn().Str("section", section.ID).Msg("章节内容为空，跳过语音合成")
			continue
		}

		audioPath := AudioPath(s.dir, section)
		log.Info().
			Int("index", i+1).
			Int("total", len(sections)).
			Str("title", section.Title).
			Msg("生成章节音频")

		result, err := s.tts.GenerateVoice(ctx, text, audioPath, s.speedRatio)
		if err != nil {
			return nil, fmt.Errorf("synthesize section %s: %w", section.ID, err)
		}

		clips = append(clips, media.AudioClip{
			SectionID: section.ID,
			Path:      audioPath,
			Duration:  result.Duration,
		})
	}
	return clips, nil
}
