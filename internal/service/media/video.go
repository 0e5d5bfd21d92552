package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"docent/internal/model/media"
)

// VideoService 视频阶段：解说词 + 音频 + 图片 -> 最终视频
type VideoService struct {
	assembler *Assembler
	audio     AudioLocator
	imageDir  string
}

// NewVideoService 创建视频服务
func NewVideoService(assembler *Assembler, audio AudioLocator, imageDir string) *VideoService {
	return &VideoService{assembler: assembler, audio: audio, imageDir: imageDir}
}

// Render 使用给定图片渲染视频；images 为空时从图片目录加载（可按 query 前缀过滤）
func (s *VideoService) Render(ctx context.Context, sections []media.Section, images []media.ImageRecord, query, outputPath string) (string, error) {
	if len(images) == 0 {
		loaded, err := LoadImages(s.imageDir, query)
		if err != nil {
			return "", err
		}
		images = loaded
	}
	log.Info().
		Int("sections", len(sections)).
		Int("images", len(images)).
		Str("output", outputPath).
		Msg("开始合成视频")

	return s.assembler.Assemble(ctx, sections, images, s.audio, outputPath)
}

// RenderScript 读取解说词 JSON 后渲染
func (s *VideoService) RenderScript(ctx context.Context, scriptPath, query, outputPath string) (string, error) {
	sections, err := media.LoadScript(scriptPath)
	if err != nil {
		return "", err
	}
	return s.Render(ctx, sections, nil, query, outputPath)
}

// LoadImages 列出目录中允许扩展名的图片，按文件名排序；query 非空时只保留 {query}_{n} 命名的文件
func LoadImages(dir, query string) ([]media.ImageRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read image dir: %w", err)
	}

	// 只匹配 {query}_{n}.ext，避免 a 匹配到 a_b_0.jpg
	var pattern *regexp.Regexp
	if query != "" {
		pattern = regexp.MustCompile(`^` + regexp.QuoteMeta(ArtifactName(query)) + `_\d+\.[^.]+$`)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !allowedImageExts[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		if pattern != nil && !pattern.MatchString(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]media.ImageRecord, 0, len(names))
	for i, name := range names {
		p := filepath.Join(dir, name)
		var size int64
		if info, err := os.Stat(p); err == nil {
			size = info.Size()
		}
		records = append(records, media.ImageRecord{Index: i, Path: p, Size: size})
	}
	return records, nil
}
