package media

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"docent/internal/model/media"
)

// ReferenceSource 参考文本来源（Wikipedia）
type ReferenceSource interface {
	Sections(ctx context.Context, query string) (*media.ReferenceText, error)
}

// RetrievalOptions 检索阶段参数
type RetrievalOptions struct {
	TextDir     string
	NumImages   int
	BatchSize   int
	MaxAttempts int
}

// SearchResult 检索阶段产物
type SearchResult struct {
	SectionsPath string
	Sections     *media.ReferenceText
	Images       []media.ImageRecord
}

// RetrievalService 检索阶段：参考文本 + 图片采集
type RetrievalService struct {
	source   ReferenceSource
	acquirer *Acquirer
	opts     RetrievalOptions
}

// NewRetrievalService 创建检索服务
func NewRetrievalService(source ReferenceSource, acquirer *Acquirer, opts RetrievalOptions) *RetrievalService {
	return &RetrievalService{source: source, acquirer: acquirer, opts: opts}
}

// SectionsPath 章节文本 JSON 路径 {text_dir}/{query}_sections.json
func SectionsPath(textDir, query string) string {
	return filepath.Join(textDir, ArtifactName(query)+"_sections.json")
}

// Search 获取参考文本并采集图片
// 参考文本为空时返回 ErrNoReferenceText；图片不足不是错误
func (s *RetrievalService) Search(ctx context.Context, query string) (*SearchResult, error) {
	ref, err := s.source.Sections(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch reference text: %w", err)
	}
	if ref == nil || ref.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoReferenceText, query)
	}

	sectionsPath := SectionsPath(s.opts.TextDir, query)
	if err := media.SaveReferenceText(sectionsPath, ref); err != nil {
		return nil, fmt.Errorf("save sections: %w", err)
	}
	log.Info().Str("path", sectionsPath).Int("sections", ref.Len()).Msg("已保存章节文本")

	images, err := s.acquirer.Acquire(ctx, query, s.opts.NumImages, s.opts.BatchSize, s.opts.MaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("acquire images: %w", err)
	}
	log.Info().Int("images", len(images)).Int("target", s.opts.NumImages).Msg("图片采集完成")

	return &SearchResult{
		SectionsPath: sectionsPath,
		Sections:     ref,
		Images:       images,
	}, nil
}
